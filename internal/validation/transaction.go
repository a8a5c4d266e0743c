package validation

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/farukx11/server-10/internal/models"

	"github.com/go-playground/validator/v10"
)

// TransactionPayload is the body of a create request.
type TransactionPayload struct {
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// TransactionPatch is the body of an update request. Absent fields keep
// their stored value.
type TransactionPatch struct {
	Type        *string         `json:"type"`
	Category    *string         `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description *string         `json:"description"`
	Date        *string         `json:"date"`
}

// Transaction holds the normalized fields of a valid payload.
type Transaction struct {
	Type        string
	Category    string
	Amount      float64
	Description string
	Date        time.Time
}

// Apply copies the validated fields onto t.
func (v Transaction) Apply(t *models.Transaction) {
	t.Type = v.Type
	t.Category = v.Category
	t.Amount = v.Amount
	t.Description = v.Description
	t.Date = v.Date
}

// transactionFields is what the struct rules see. Amount and Date are
// already parsed; unparseable input leaves them zero so the rules fail.
type transactionFields struct {
	Type        string    `json:"type" validate:"required,txtype"`
	Category    string    `json:"category" validate:"required,category"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"max=255"`
}

var categoryList = strings.Join(models.Categories, ", ")

func transactionMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "type":
		return "Type is required and must be 'income' or 'expense'"
	case "category":
		if fe.Tag() == "required" {
			return "Category is required"
		}
		return "Category must be one of: " + categoryList
	case "amount":
		return "Amount is required and must be a valid number greater than 0"
	case "date":
		return "Date is required and must be a valid date"
	case "description":
		return "Description must be at most " + strconv.Itoa(MaxDescriptionLength) + " characters"
	}
	return fe.Error()
}

// ValidateTransaction checks a create payload. On failure the error is an
// *Error listing every violation.
func ValidateTransaction(p TransactionPayload) (Transaction, error) {
	amount, _ := ParseAmount(p.Amount)
	date, _ := ParseDate(p.Date)

	fields := transactionFields{
		Type:        strings.ToLower(strings.TrimSpace(p.Type)),
		Category:    strings.ToLower(strings.TrimSpace(p.Category)),
		Amount:      amount,
		Date:        date,
		Description: strings.TrimSpace(p.Description),
	}
	if err := asError(check(fields, transactionMessage)); err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Type:        fields.Type,
		Category:    fields.Category,
		Amount:      fields.Amount,
		Description: fields.Description,
		Date:        fields.Date,
	}, nil
}

// ValidateUpdate merges patch onto existing and checks the result with the
// same rules as ValidateTransaction.
func ValidateUpdate(existing *models.Transaction, patch TransactionPatch) (Transaction, error) {
	p := TransactionPayload{
		Type:        existing.Type,
		Category:    existing.Category,
		Amount:      json.RawMessage(strconv.FormatFloat(existing.Amount, 'f', -1, 64)),
		Description: existing.Description,
		Date:        existing.Date.UTC().Format(time.RFC3339Nano),
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if len(patch.Amount) > 0 {
		p.Amount = patch.Amount
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	return ValidateTransaction(p)
}
