// Package events announces completed budget operations to other services.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeImportCompleted          = "budget.import.completed"
	TypeTransferCompleted        = "budget.transfer.completed"
	TypeStartingBalanceCommitted = "budget.starting_balance.committed"
)

// Event is the message body published for every completed operation.
type Event struct {
	Type       string         `json:"type"`
	UserID     string         `json:"user_id"`
	BudgetID   string         `json:"budget_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, userID, budgetID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		BudgetID:   budgetID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// NewPublisher connects to the broker at url, or returns a NopPublisher when
// url is empty.
func NewPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, exchange)
}
