// Package engine implements the recurring payment scheduler: catching up due
// occurrences, posting them to the ledger, and advancing each definition's
// schedule.
//
// The engine runs on demand, once per authenticated session, not from a
// background timer. It holds no locks; safety under concurrent sessions comes
// from the storage layer (deterministic occurrence ids and versioned
// definition writes).
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kaan/pocketledger/pkg/currency"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/notify"
	"github.com/kaan/pocketledger/pkg/schedule"
	"github.com/kaan/pocketledger/pkg/storage"
	"github.com/kaan/pocketledger/pkg/websockets"
)

// maxCatchUpOccurrences bounds the catch-up loop per definition per run. A
// healthy daily definition left alone for over two years hits the cap, which
// is treated as corrupt schedule data rather than looping on.
const maxCatchUpOccurrences = 1000

// ErrInvalidSchedule is returned when a definition's schedule data is
// inconsistent. The definition is skipped; siblings still process.
var ErrInvalidSchedule = errors.New("invalid schedule data")

// Engine drives recurring payment processing over a storage backend.
type Engine struct {
	store   storage.EngineStore
	events  notify.Publisher
	sockets websockets.Publisher
	logger  *slog.Logger

	// Now is the clock used for due-date comparison; tests override it.
	Now func() time.Time
}

// New creates an Engine. events and sockets may be nil when the respective
// side channel is not configured; logger may be nil for the default.
func New(store storage.EngineStore, events notify.Publisher, sockets websockets.Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		events:  events,
		sockets: sockets,
		logger:  logger,
		Now:     time.Now,
	}
}

// ProcessDuePayments walks all of the user's active recurring payment
// definitions and posts one ledger transaction per due occurrence, catching up
// missed periods individually rather than as a lump sum. It returns the number
// of occurrences posted in this run.
//
// Failures are isolated per definition: a broken or unreachable definition is
// reported in the joined error while its siblings still process. Occurrences
// already posted by an earlier or concurrent run are skipped through the
// storage uniqueness constraint and not counted again.
func (e *Engine) ProcessDuePayments(ctx context.Context, userID string) (int, error) {
	payments, err := e.store.ListActiveRecurringPayments(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list active recurring payments: %w", err)
	}

	posted := 0
	var errs []error
	for i := range payments {
		payment := &payments[i]
		n, err := e.catchUp(ctx, payment)
		posted += n
		if err != nil {
			errs = append(errs, fmt.Errorf("payment %s: %w", payment.Id, err))
		}
	}

	if posted > 0 || len(errs) > 0 {
		e.logger.Info("processed due payments",
			"userId", userID,
			"definitions", len(payments),
			"posted", posted,
			"failed", len(errs),
		)
	}

	return posted, errors.Join(errs...)
}

// catchUp processes a single definition: posts every due occurrence, advances
// the schedule, and persists the result. Progress made before a mid-loop
// failure is still persisted so a retry resumes instead of restarting.
func (e *Engine) catchUp(ctx context.Context, payment *models.RecurringPayment) (int, error) {
	if err := validateSchedule(payment); err != nil {
		e.logger.Warn("skipping recurring payment with invalid schedule",
			"paymentId", payment.Id, "error", err)
		return 0, err
	}

	now := e.Now()
	posted := 0
	iterations := 0
	var loopErr error

	changed := false
	for payment.IsActive && !payment.NextPaymentDate.After(now) {
		// An occurrence past the end date is never posted, even when the end
		// date was edited below an already-computed due date.
		if payment.EndDate != nil && payment.NextPaymentDate.After(*payment.EndDate) {
			payment.IsActive = false
			payment.UpdatedAt = now
			changed = true
			break
		}

		iterations++
		if iterations > maxCatchUpOccurrences {
			loopErr = fmt.Errorf("%w: catch-up exceeded %d occurrences", ErrInvalidSchedule, maxCatchUpOccurrences)
			break
		}

		if payment.AutoCreateTransaction {
			tx := occurrenceTransaction(payment, now)
			err := e.store.InsertTransaction(ctx, tx)
			switch {
			case errors.Is(err, storage.ErrDuplicateOccurrence):
				// A previous run already posted this occurrence. The
				// accumulators below still advance so the definition
				// converges, but the occurrence is not re-counted.
			case err != nil:
				loopErr = fmt.Errorf("failed to post occurrence %d: %w", tx.OccurrenceIndex, err)
			default:
				posted++
				e.announce(ctx, payment, tx)
			}
			if loopErr != nil {
				break
			}

			occurrence := payment.NextPaymentDate
			payment.PaymentCount++
			payment.TotalPaid = payment.TotalPaid.Add(payment.Amount)
			payment.LastPaymentDate = &occurrence
		}

		e.advance(payment, now)
		changed = true
	}

	if changed {
		if err := e.persist(ctx, payment); err != nil {
			return posted, errors.Join(loopErr, err)
		}
	}

	return posted, loopErr
}

// advance moves the definition one schedule unit forward and deactivates it
// when the new due date passes its end date.
func (e *Engine) advance(payment *models.RecurringPayment, now time.Time) {
	payment.NextPaymentDate = schedule.Next(payment.NextPaymentDate, payment.Frequency, payment.StartDate.Day())
	payment.UpdatedAt = now
	if payment.EndDate != nil && payment.NextPaymentDate.After(*payment.EndDate) {
		payment.IsActive = false
	}
}

// expirePastEnd deactivates and persists a definition whose current due date
// already falls past its end date, so no further occurrence can be posted or
// skipped against it.
func (e *Engine) expirePastEnd(ctx context.Context, payment *models.RecurringPayment, now time.Time) (bool, error) {
	if payment.EndDate == nil || !payment.NextPaymentDate.After(*payment.EndDate) {
		return false, nil
	}
	payment.IsActive = false
	payment.UpdatedAt = now
	if err := e.persist(ctx, payment); err != nil {
		return true, err
	}
	return true, nil
}

// persist writes the definition back. Losing a version race to a concurrent
// session is fine: the winner already holds equivalent or newer state, and
// any occurrences both sessions posted were deduplicated at insert.
func (e *Engine) persist(ctx context.Context, payment *models.RecurringPayment) error {
	err := e.store.UpsertRecurringPayment(ctx, payment)
	if errors.Is(err, storage.ErrVersionConflict) {
		e.logger.Warn("concurrent session advanced recurring payment first",
			"paymentId", payment.Id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to persist recurring payment: %w", err)
	}
	return nil
}

// announce publishes side-channel notifications for a posted occurrence.
// Both channels are best-effort; failures are logged, never propagated.
func (e *Engine) announce(ctx context.Context, payment *models.RecurringPayment, tx *models.Transaction) {
	if e.events != nil {
		event := notify.Event{
			Type:          notify.EventPaymentPosted,
			UserID:        payment.UserId,
			PaymentID:     payment.Id,
			PaymentName:   payment.Name,
			TransactionID: tx.Id,
			Amount:        tx.Amount,
			DisplayAmount: currency.Format(tx.Amount, ""),
			DueDate:       tx.Date,
		}
		if err := e.events.Publish(ctx, event); err != nil {
			e.logger.Error("failed to publish posted event", "transactionId", tx.Id, "error", err)
		}
	}

	if e.sockets != nil {
		msg := websockets.Message{
			Type: websockets.MessageTypeTransactionPosted,
			Payload: websockets.TransactionPostedPayload{
				UserID:             tx.UserId,
				TransactionID:      tx.Id,
				RecurringPaymentID: tx.RecurringPaymentId,
				Amount:             tx.Amount.StringFixed(2),
				Date:               tx.Date.Format(time.RFC3339),
			},
		}
		if err := e.sockets.Publish(ctx, msg); err != nil {
			e.logger.Error("failed to push transaction to devices", "transactionId", tx.Id, "error", err)
		}
	}
}

// occurrenceTransaction builds the ledger entry for the definition's next due
// occurrence. The deterministic id keeps posting at-most-once under retries.
func occurrenceTransaction(payment *models.RecurringPayment, now time.Time) *models.Transaction {
	index := payment.NextOccurrenceIndex()
	return &models.Transaction{
		Id:                 models.OccurrenceID(payment.Id, index),
		UserId:             payment.UserId,
		AccountId:          payment.AccountId,
		Name:               payment.Name,
		Category:           payment.Category,
		Amount:             payment.Amount,
		Type:               models.Expense,
		Date:               payment.NextPaymentDate,
		RecurringPaymentId: payment.Id,
		OccurrenceIndex:    index,
		CreatedAt:          now,
	}
}

// validateSchedule rejects definitions whose date fields are inconsistent.
func validateSchedule(payment *models.RecurringPayment) error {
	if !payment.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, payment.Frequency)
	}
	if !payment.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidSchedule)
	}
	if payment.NextPaymentDate.Before(payment.StartDate) {
		return fmt.Errorf("%w: next payment date precedes start date", ErrInvalidSchedule)
	}
	if payment.EndDate != nil && payment.EndDate.Before(payment.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidSchedule)
	}
	return nil
}
