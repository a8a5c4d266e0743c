package models

import "time"

// DefaultPhotoURL is used when a user registers without an avatar.
const DefaultPhotoURL = "https://example.com/default-avatar.png"

// Auth providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Categories is the closed set of transaction categories.
var Categories = []string{
	"food",
	"transport",
	"utilities",
	"salary",
	"entertainment",
	"home",
	"freelance",
	"investment",
}

// IsCategory reports whether c is a known category.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsType reports whether t is income or expense.
func IsType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// User represents a user account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhotoURL     string    `json:"photoURL"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
