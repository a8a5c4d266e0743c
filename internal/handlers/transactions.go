package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farukx11/server-10/internal/events"
	"github.com/farukx11/server-10/internal/models"
	"github.com/farukx11/server-10/internal/report"
	"github.com/farukx11/server-10/internal/storage"
	"github.com/farukx11/server-10/internal/validation"

	"github.com/go-chi/chi/v5"
)

type transactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

type transactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// CreateTransaction records a transaction for the authenticated user. Owner
// fields always come from the token, never from the body.
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var p validation.TransactionPayload
	if !h.decodeJSON(w, r, &p) {
		return
	}
	valid, err := validation.ValidateTransaction(p)
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	user := GetUserFromContext(r)
	t := &models.Transaction{UserID: user.ID, Email: user.Email, Name: user.Name}
	valid.Apply(t)

	if err := h.store.CreateTransaction(r.Context(), t); err != nil {
		h.internalError(w, r, err, "Error adding transaction")
		return
	}

	h.publish(r.Context(), events.NewEvent(events.TransactionCreated, user.ID, t.ID, t))
	writeJSON(w, http.StatusCreated, transactionResponse{Transaction: t})
}

// ListTransactions returns the authenticated user's transactions, newest
// first unless sort and order say otherwise.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	txs, err := h.store.ListTransactions(r.Context(), GetUserFromContext(r).ID, filter)
	if err != nil {
		h.internalError(w, r, err, "Error fetching transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

// GetTransaction returns one of the authenticated user's transactions.
// Transactions of other users are reported as not found.
func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTransaction(r.Context(), GetUserFromContext(r).ID, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Error fetching transaction")
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Transaction: t})
}

// UpdateTransaction merges the request body onto a stored transaction.
func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	existing, err := h.store.GetTransaction(r.Context(), user.ID, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Error updating transaction")
		return
	}

	var patch validation.TransactionPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	valid, err := validation.ValidateUpdate(existing, patch)
	if err != nil {
		h.invalid(w, r, err)
		return
	}
	valid.Apply(existing)

	err = h.store.UpdateTransaction(r.Context(), existing)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between the read and the write.
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Error updating transaction")
		return
	}

	h.publish(r.Context(), events.NewEvent(events.TransactionUpdated, user.ID, existing.ID, existing))
	writeJSON(w, http.StatusOK, transactionResponse{Transaction: existing})
}

// DeleteTransaction permanently removes one of the user's transactions.
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id := chi.URLParam(r, "id")

	err := h.store.DeleteTransaction(r.Context(), user.ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		h.fail(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Error deleting transaction")
		return
	}

	h.publish(r.Context(), events.NewEvent(events.TransactionDeleted, user.ID, id, nil))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction deleted"})
}

// Overview returns total income, expense and balance of the user.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.ListTransactions(r.Context(), GetUserFromContext(r).ID, storage.ListFilter{})
	if err != nil {
		h.internalError(w, r, err, "Error fetching overview")
		return
	}
	writeJSON(w, http.StatusOK, report.Overview(txs))
}

// Reports returns the overview plus category and month groupings. The
// groupBy parameter selects one grouping; the list filters narrow the input.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := parseListFilter(query)
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	txs, err := h.store.ListTransactions(r.Context(), GetUserFromContext(r).ID, filter)
	if err != nil {
		h.internalError(w, r, err, "Error fetching reports")
		return
	}

	rep, err := report.Build(txs, query.Get("groupBy"))
	if err != nil {
		h.invalid(w, r, &validation.Error{Messages: []string{err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// parseListFilter reads sort, order, month, type and category.
func parseListFilter(q url.Values) (storage.ListFilter, error) {
	var (
		f        storage.ListFilter
		messages []string
	)

	if s := q.Get("sort"); s != "" {
		if storage.ValidSort(s) {
			f.Sort = s
		} else {
			messages = append(messages, "sort must be one of: createdAt, date, amount")
		}
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		messages = append(messages, "order must be 'asc' or 'desc'")
	}

	if m := q.Get("month"); m != "" {
		month, err := time.Parse(report.MonthLayout, m)
		if err != nil {
			messages = append(messages, "month must be formatted as YYYY-MM")
		} else {
			f.Month = month
		}
	}

	if t := strings.ToLower(q.Get("type")); t != "" {
		if models.IsType(t) {
			f.Type = t
		} else {
			messages = append(messages, "type must be 'income' or 'expense'")
		}
	}

	if c := strings.ToLower(q.Get("category")); c != "" {
		if models.IsCategory(c) {
			f.Category = c
		} else {
			messages = append(messages, "category must be one of: "+strings.Join(models.Categories, ", "))
		}
	}

	if len(messages) > 0 {
		return storage.ListFilter{}, &validation.Error{Messages: messages}
	}
	return f, nil
}
