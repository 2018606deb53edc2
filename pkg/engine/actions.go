package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
)

// ProcessSinglePayment posts exactly one occurrence for the definition, dated
// at its current due date, regardless of whether that date has arrived yet.
// The schedule advances one unit; end-date deactivation applies as usual.
func (e *Engine) ProcessSinglePayment(ctx context.Context, userID, paymentID string) (*models.Transaction, error) {
	payment, err := e.store.GetRecurringPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring payment: %w", err)
	}
	if err := validateSchedule(payment); err != nil {
		return nil, err
	}

	now := e.Now()
	if expired, err := e.expirePastEnd(ctx, payment, now); expired || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: no occurrences remain before the end date", ErrInvalidSchedule)
	}

	tx := occurrenceTransaction(payment, now)
	if err := e.store.InsertTransaction(ctx, tx); err != nil {
		if errors.Is(err, storage.ErrDuplicateOccurrence) {
			return nil, fmt.Errorf("occurrence %d already posted: %w", tx.OccurrenceIndex, err)
		}
		return nil, fmt.Errorf("failed to post occurrence: %w", err)
	}
	e.announce(ctx, payment, tx)

	occurrence := payment.NextPaymentDate
	payment.PaymentCount++
	payment.TotalPaid = payment.TotalPaid.Add(payment.Amount)
	payment.LastPaymentDate = &occurrence
	e.advance(payment, now)

	if err := e.persist(ctx, payment); err != nil {
		return tx, err
	}
	return tx, nil
}

// SkipPayment advances the definition past its current due date without
// posting a transaction. Totals and payment counts are untouched, so the
// occurrence index of the next posted payment is unaffected by skips.
func (e *Engine) SkipPayment(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error) {
	payment, err := e.store.GetRecurringPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring payment: %w", err)
	}
	if err := validateSchedule(payment); err != nil {
		return nil, err
	}

	now := e.Now()
	if expired, err := e.expirePastEnd(ctx, payment, now); expired || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: no occurrences remain before the end date", ErrInvalidSchedule)
	}

	e.advance(payment, now)
	if err := e.persist(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ToggleActive flips the definition's active flag. Reactivating does not
// rewind the schedule; due occurrences accrued while paused post on the next
// processing run.
func (e *Engine) ToggleActive(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error) {
	payment, err := e.store.GetRecurringPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring payment: %w", err)
	}

	payment.IsActive = !payment.IsActive
	payment.UpdatedAt = e.Now()
	if err := e.persist(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
