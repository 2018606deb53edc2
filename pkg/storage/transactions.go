package storage

import (
	"context"

	"github.com/kaan/pocketledger/pkg/models"
)

// TransactionStore defines the interface for the transaction ledger.
type TransactionStore interface {
	// InsertTransaction writes a new ledger entry. The write is conditioned
	// on the transaction id being unused; occurrence transactions carry a
	// deterministic id, so a duplicate insert of the same occurrence returns
	// ErrDuplicateOccurrence instead of double-posting.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves one of the user's transactions by id.
	GetTransaction(ctx context.Context, userID, txID string) (*models.Transaction, error)

	// ListTransactionsByUserID retrieves all transactions for a specific user.
	ListTransactionsByUserID(ctx context.Context, userID string) ([]models.Transaction, error)
}
