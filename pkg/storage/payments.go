package storage

import (
	"context"
	"time"

	"github.com/kaan/pocketledger/pkg/models"
)

// PaymentReader defines the interface for reading recurring payment
// definitions.
type PaymentReader interface {
	// GetRecurringPayment retrieves one of the user's payment definitions.
	// It returns ErrPaymentNotFound for missing or foreign definitions alike.
	GetRecurringPayment(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error)

	// ListRecurringPayments retrieves all of the user's payment definitions.
	ListRecurringPayments(ctx context.Context, userID string) ([]models.RecurringPayment, error)

	// ListActiveRecurringPayments retrieves the user's definitions with
	// IsActive set, the engine's working set.
	ListActiveRecurringPayments(ctx context.Context, userID string) ([]models.RecurringPayment, error)
}

// PaymentManager defines the interface for creating and mutating recurring
// payment definitions.
type PaymentManager interface {
	// CreateRecurringPayment persists a new definition and returns it with
	// server-side fields (id, version, timestamps) filled in.
	CreateRecurringPayment(ctx context.Context, payment *models.RecurringPayment) (*models.RecurringPayment, error)

	// UpsertRecurringPayment persists an updated definition. The write is
	// conditioned on the version the caller read; a lost race returns
	// ErrVersionConflict and leaves the store untouched.
	UpsertRecurringPayment(ctx context.Context, payment *models.RecurringPayment) error

	// DeleteRecurringPayment removes one of the user's definitions.
	DeleteRecurringPayment(ctx context.Context, userID, paymentID string) error
}

// PaymentStore combines the reader and manager interfaces.
type PaymentStore interface {
	PaymentReader
	PaymentManager
}

// ReminderReader is the privileged cross-user read used by the reminder scan.
type ReminderReader interface {
	// ListUpcomingReminders retrieves active definitions, across all users,
	// whose next payment date falls on or before the cutoff.
	ListUpcomingReminders(ctx context.Context, cutoff time.Time) ([]models.RecurringPayment, error)
}
