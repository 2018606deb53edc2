package storage

import (
	"context"

	"github.com/kaan/pocketledger/pkg/models"
)

// AccountStore defines the interface for managing user accounts.
type AccountStore interface {
	// GetAccount retrieves one of the user's accounts by id.
	GetAccount(ctx context.Context, userID, accountID string) (*models.Account, error)

	// CreateAccount creates a new account for a user.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// ListAccounts retrieves all accounts owned by the user.
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
}
