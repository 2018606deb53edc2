// Package recurring exposes recurring payment definitions and their
// processing operations over HTTP.
package recurring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/kaan/pocketledger/pkg/engine"
	"github.com/kaan/pocketledger/pkg/middleware"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
)

// PaymentProcessor is the slice of the engine the handlers need.
type PaymentProcessor interface {
	ProcessDuePayments(ctx context.Context, userID string) (int, error)
	ProcessSinglePayment(ctx context.Context, userID, paymentID string) (*models.Transaction, error)
	SkipPayment(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error)
	ToggleActive(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error)
}

// Handler holds the dependencies for recurring payment handlers.
type Handler struct {
	Store     storage.ApiStore
	Processor PaymentProcessor
	Logger    *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store storage.ApiStore, processor PaymentProcessor, logger *slog.Logger) *Handler {
	return &Handler{Store: store, Processor: processor, Logger: logger}
}

// NewRecurringPayment is the request body for creating a definition.
type NewRecurringPayment struct {
	Name                  string              `json:"name"`
	Description           string              `json:"description,omitempty"`
	Category              string              `json:"category"`
	CategoryIcon          string              `json:"categoryIcon,omitempty"`
	AccountId             string              `json:"accountId"`
	Amount                decimal.Decimal     `json:"amount"`
	Frequency             string              `json:"frequency"`
	StartDate             openapi_types.Date  `json:"startDate"`
	EndDate               *openapi_types.Date `json:"endDate,omitempty"`
	AutoCreateTransaction *bool               `json:"autoCreateTransaction,omitempty"`
	ReminderDays          *int                `json:"reminderDays,omitempty"`
}

// UpdateRecurringPayment is the request body for editing a definition. Nil
// fields are left unchanged.
type UpdateRecurringPayment struct {
	Name         *string             `json:"name,omitempty"`
	Description  *string             `json:"description,omitempty"`
	Category     *string             `json:"category,omitempty"`
	CategoryIcon *string             `json:"categoryIcon,omitempty"`
	Amount       *decimal.Decimal    `json:"amount,omitempty"`
	EndDate      *openapi_types.Date `json:"endDate,omitempty"`
	ReminderDays *int                `json:"reminderDays,omitempty"`
}

// ProcessResult is the response body for a processing run.
type ProcessResult struct {
	Processed int `json:"processed"`
}

// CreatePayment handles POST /recurring-payments.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req NewRecurringPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	payment, err := paymentFromRequest(userID, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// The definition must bill against an account the user actually owns.
	if _, err := h.Store.GetAccount(r.Context(), userID, payment.AccountId); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			http.Error(w, fmt.Sprintf("unknown account %q", payment.AccountId), http.StatusUnprocessableEntity)
			return
		}
		h.Logger.Error("failed to verify account", "accountId", payment.AccountId, "error", err)
		http.Error(w, "Failed to create recurring payment", http.StatusInternalServerError)
		return
	}

	created, err := h.Store.CreateRecurringPayment(r.Context(), payment)
	if err != nil {
		h.Logger.Error("failed to create recurring payment", "error", err)
		http.Error(w, "Failed to create recurring payment", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListPayments handles GET /recurring-payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	payments, err := h.Store.ListRecurringPayments(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list recurring payments", "error", err)
		http.Error(w, "Failed to list recurring payments", http.StatusInternalServerError)
		return
	}
	if payments == nil {
		payments = []models.RecurringPayment{}
	}

	respondJSON(w, http.StatusOK, payments)
}

// GetPayment handles GET /recurring-payments/{id}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	payment, err := h.Store.GetRecurringPayment(r.Context(), userID, paymentID)
	if err != nil {
		h.writeError(w, "Failed to retrieve recurring payment", err)
		return
	}

	respondJSON(w, http.StatusOK, payment)
}

// UpdatePayment handles PUT /recurring-payments/{id}. Schedule anchors
// (frequency, start date) are immutable once created; editing them would
// re-date past occurrences.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateRecurringPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	payment, err := h.Store.GetRecurringPayment(r.Context(), userID, paymentID)
	if err != nil {
		h.writeError(w, "Failed to retrieve recurring payment", err)
		return
	}

	applyUpdate(payment, &req)
	if err := validateUpdated(payment); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := h.Store.UpsertRecurringPayment(r.Context(), payment); err != nil {
		h.writeError(w, "Failed to update recurring payment", err)
		return
	}

	respondJSON(w, http.StatusOK, payment)
}

// DeletePayment handles DELETE /recurring-payments/{id}.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	if err := h.Store.DeleteRecurringPayment(r.Context(), userID, paymentID); err != nil {
		h.writeError(w, "Failed to delete recurring payment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProcessDue handles POST /recurring-payments/process: the session-start
// catch-up run for the authenticated user.
func (h *Handler) ProcessDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	count, err := h.Processor.ProcessDuePayments(r.Context(), userID)
	if err != nil {
		// Partial progress is already persisted; report what posted along
		// with the failure so the client can refresh and retry.
		h.Logger.Error("processing run finished with errors", "userId", userID, "posted", count, "error", err)
		if count == 0 && !errors.Is(err, engine.ErrInvalidSchedule) {
			http.Error(w, "Failed to process due payments", http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusOK, ProcessResult{Processed: count})
}

// PayNow handles POST /recurring-payments/{id}/pay.
func (h *Handler) PayNow(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	tx, err := h.Processor.ProcessSinglePayment(r.Context(), userID, paymentID)
	if err != nil {
		h.writeError(w, "Failed to process payment", err)
		return
	}

	respondJSON(w, http.StatusCreated, tx)
}

// Skip handles POST /recurring-payments/{id}/skip.
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	payment, err := h.Processor.SkipPayment(r.Context(), userID, paymentID)
	if err != nil {
		h.writeError(w, "Failed to skip payment", err)
		return
	}

	respondJSON(w, http.StatusOK, payment)
}

// Toggle handles POST /recurring-payments/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request, paymentID string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	payment, err := h.Processor.ToggleActive(r.Context(), userID, paymentID)
	if err != nil {
		h.writeError(w, "Failed to toggle payment", err)
		return
	}

	respondJSON(w, http.StatusOK, payment)
}

// writeError maps domain sentinels to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, storage.ErrPaymentNotFound):
		http.Error(w, "Recurring payment not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrDuplicateOccurrence):
		http.Error(w, "Occurrence already posted", http.StatusConflict)
	case errors.Is(err, storage.ErrVersionConflict):
		http.Error(w, "Recurring payment was modified concurrently", http.StatusConflict)
	case errors.Is(err, engine.ErrInvalidSchedule):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.Logger.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func paymentFromRequest(userID string, req *NewRecurringPayment) (*models.RecurringPayment, error) {
	freq := models.Frequency(req.Frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("unknown frequency %q", req.Frequency)
	}
	if !req.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if req.AccountId == "" {
		return nil, errors.New("accountId is required")
	}
	startDate := req.StartDate.Time
	if startDate.IsZero() {
		return nil, errors.New("startDate is required")
	}
	var endDate *time.Time
	if req.EndDate != nil {
		if req.EndDate.Time.Before(startDate) {
			return nil, errors.New("endDate precedes startDate")
		}
		endDate = &req.EndDate.Time
	}

	autoCreate := true
	if req.AutoCreateTransaction != nil {
		autoCreate = *req.AutoCreateTransaction
	}
	reminderDays := 0
	if req.ReminderDays != nil {
		if *req.ReminderDays < 0 {
			return nil, errors.New("reminderDays must not be negative")
		}
		reminderDays = *req.ReminderDays
	}

	return &models.RecurringPayment{
		UserId:                userID,
		Name:                  req.Name,
		Description:           req.Description,
		Category:              req.Category,
		CategoryIcon:          req.CategoryIcon,
		AccountId:             req.AccountId,
		Amount:                req.Amount,
		Frequency:             freq,
		StartDate:             startDate,
		NextPaymentDate:       startDate,
		EndDate:               endDate,
		IsActive:              true,
		AutoCreateTransaction: autoCreate,
		ReminderDays:          reminderDays,
		TotalPaid:             decimal.Zero,
	}, nil
}

func applyUpdate(payment *models.RecurringPayment, req *UpdateRecurringPayment) {
	if req.Name != nil {
		payment.Name = *req.Name
	}
	if req.Description != nil {
		payment.Description = *req.Description
	}
	if req.Category != nil {
		payment.Category = *req.Category
	}
	if req.CategoryIcon != nil {
		payment.CategoryIcon = *req.CategoryIcon
	}
	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.EndDate != nil {
		payment.EndDate = &req.EndDate.Time
	}
	if req.ReminderDays != nil {
		payment.ReminderDays = *req.ReminderDays
	}
}

func validateUpdated(payment *models.RecurringPayment) error {
	if !payment.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if payment.ReminderDays < 0 {
		return errors.New("reminderDays must not be negative")
	}
	if payment.EndDate != nil && payment.EndDate.Before(payment.StartDate) {
		return errors.New("endDate precedes startDate")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
