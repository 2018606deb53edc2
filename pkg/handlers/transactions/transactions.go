// Package transactions exposes the user's ledger over HTTP.
package transactions

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kaan/pocketledger/pkg/middleware"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
)

// Handler holds the dependencies for transaction-related handlers.
type Handler struct {
	Store  storage.ApiStore
	Logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store storage.ApiStore, logger *slog.Logger) *Handler {
	return &Handler{Store: store, Logger: logger}
}

// ListTransactions handles GET /transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	txs, err := h.Store.ListTransactionsByUserID(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list transactions", "error", err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(txs)
}

// GetTransactionById handles GET /transactions/{id}.
func (h *Handler) GetTransactionById(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	tx, err := h.Store.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("failed to retrieve transaction", "error", err)
		http.Error(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tx)
}
