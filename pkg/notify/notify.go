package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventType defines the kind of a payment event.
type EventType string

const (
	// EventPaymentPosted is emitted after an occurrence transaction is
	// written to the ledger.
	EventPaymentPosted EventType = "payment.posted"

	// EventPaymentReminder is emitted when a payment enters its reminder
	// window. Delivery to the user's device is handled downstream.
	EventPaymentReminder EventType = "payment.reminder"
)

// Event is the message published for payment lifecycle notifications.
type Event struct {
	Type          EventType       `json:"type"`
	UserID        string          `json:"user_id"`
	PaymentID     string          `json:"payment_id"`
	PaymentName   string          `json:"payment_name"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	// DisplayAmount is the amount pre-formatted for notification text,
	// e.g. "₺150,00".
	DisplayAmount string    `json:"display_amount,omitempty"`
	DueDate       time.Time `json:"due_date"`
}

// Publisher defines the interface for a component that publishes payment
// events for asynchronous consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
