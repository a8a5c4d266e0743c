// Package events publishes transaction changes to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/farukx11/server-10/internal/models"
)

// Event kinds, also used as routing keys.
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Event describes one change to a user's transactions. Transaction is nil
// for deletions.
type Event struct {
	Kind          string              `json:"kind"`
	UserID        string              `json:"userId"`
	TransactionID string              `json:"transactionId"`
	Transaction   *models.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind, userID, transactionID string, t *models.Transaction) Event {
	return Event{
		Kind:          kind,
		UserID:        userID,
		TransactionID: transactionID,
		Transaction:   t,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
