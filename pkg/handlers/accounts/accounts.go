// Package accounts exposes account management over HTTP.
package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kaan/pocketledger/pkg/middleware"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
)

// Handler holds the dependencies for account-related handlers.
type Handler struct {
	Store  storage.ApiStore
	Logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store storage.ApiStore, logger *slog.Logger) *Handler {
	return &Handler{Store: store, Logger: logger}
}

// NewAccount is the request body for creating an account.
type NewAccount struct {
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// CreateAccount handles POST /accounts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req NewAccount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusUnprocessableEntity)
		return
	}
	if req.Currency == "" {
		req.Currency = "TRY"
	}

	account := &models.Account{
		UserId:   userID,
		Name:     req.Name,
		Currency: req.Currency,
		Balance:  req.Balance,
	}

	created, err := h.Store.CreateAccount(r.Context(), account)
	if err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			http.Error(w, "Account already exists", http.StatusConflict)
			return
		}
		h.Logger.Error("failed to create account", "error", err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	accounts, err := h.Store.ListAccounts(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list accounts", "error", err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
}
