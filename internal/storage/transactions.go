package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farukx11/server-10/internal/models"

	"github.com/google/uuid"
)

const transactionColumns = "id, user_id, email, name, type, category, amount, description, date, created_at, updated_at"

// Sort keys accepted by ListTransactions.
const (
	SortCreatedAt = "createdAt"
	SortDate      = "date"
	SortAmount    = "amount"
)

var sortColumns = map[string]string{
	SortCreatedAt: "created_at",
	SortDate:      "date",
	SortAmount:    "amount",
}

// ListFilter narrows and orders a user's transactions.
// The zero value lists everything, newest first by creation time.
type ListFilter struct {
	Sort      string
	Ascending bool
	// Month, when non-zero, restricts results to the calendar month (UTC)
	// containing it.
	Month    time.Time
	Type     string
	Category string
}

// ValidSort reports whether s is an accepted sort key.
func ValidSort(s string) bool {
	_, ok := sortColumns[s]
	return ok
}

// CreateTransaction inserts t, assigning its ID and timestamps.
// A zero Date defaults to the creation time.
func (db *DB) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	if t.Date.IsZero() {
		t.Date = now
	}
	t.Date = t.Date.UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Email, t.Name, t.Type, t.Category, t.Amount, t.Description, t.Date, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID, scoped to its owner.
func (db *DB) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		id, userID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFoundOr(err, "get transaction")
	}
	return t, nil
}

// ListTransactions retrieves the transactions owned by userID.
func (db *DB) ListTransactions(ctx context.Context, userID string, f ListFilter) ([]models.Transaction, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if !f.Month.IsZero() {
		start := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		where = append(where, "date >= ?", "date < ?")
		args = append(args, start, start.AddDate(0, 1, 0))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	column, ok := sortColumns[f.Sort]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}
	direction := "DESC"
	if f.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s %s, rowid %s",
		transactionColumns, strings.Join(where, " AND "), column, direction, direction)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction saves the mutable fields of t. The row must be owned by t.UserID.
func (db *DB) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	t.Date = t.Date.UTC()
	t.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount = ?, description = ?, date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Type, t.Category, t.Amount, t.Description, t.Date, t.UpdatedAt, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectOne(res)
}

// DeleteTransaction removes a transaction owned by userID.
func (db *DB) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res)
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Email, &t.Name, &t.Type, &t.Category, &t.Amount,
		&t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
