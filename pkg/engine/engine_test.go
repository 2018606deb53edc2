package engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/notify"
	"github.com/kaan/pocketledger/pkg/storage"
	"github.com/kaan/pocketledger/pkg/storage/mocks"
	"github.com/kaan/pocketledger/pkg/websockets"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testEngine(store storage.EngineStore, now time.Time) *Engine {
	e := New(store, nil, nil, slog.New(slog.DiscardHandler))
	e.Now = func() time.Time { return now }
	return e
}

// monthlyRent is one month into a monthly definition: January already posted,
// February is the next due occurrence.
func monthlyRent() models.RecurringPayment {
	return models.RecurringPayment{
		Id:                    "pay1",
		UserId:                "user1",
		AccountId:             "acc1",
		Name:                  "Rent",
		Category:              "Housing",
		Amount:                decimal.RequireFromString("150.00"),
		Frequency:             models.Monthly,
		StartDate:             date(2024, time.January, 15),
		NextPaymentDate:       date(2024, time.February, 15),
		LastPaymentDate:       ptr(date(2024, time.January, 15)),
		IsActive:              true,
		AutoCreateTransaction: true,
		TotalPaid:             decimal.RequireFromString("150.00"),
		PaymentCount:          1,
		Version:               3,
	}
}

func ptr[T any](v T) *T { return &v }

type recordingEvents struct {
	events []notify.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event notify.Event) error {
	r.events = append(r.events, event)
	return nil
}

type recordingSockets struct {
	messages []websockets.Message
}

func (r *recordingSockets) Publish(ctx context.Context, msg websockets.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func TestProcessDuePayments(t *testing.T) {
	ctx := context.Background()

	t.Run("catches up one transaction per missed month", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)

		var inserted []models.Transaction
		store.On("InsertTransaction", ctx, mock.Anything).Run(func(args mock.Arguments) {
			inserted = append(inserted, *args.Get(1).(*models.Transaction))
		}).Return(nil).Times(3)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.Len(t, inserted, 3)
		assert.Equal(t, date(2024, time.February, 15), inserted[0].Date)
		assert.Equal(t, date(2024, time.March, 15), inserted[1].Date)
		assert.Equal(t, date(2024, time.April, 15), inserted[2].Date)
		assert.Equal(t, "pay1#occ2", inserted[0].Id)
		assert.Equal(t, "pay1#occ4", inserted[2].Id)
		assert.True(t, inserted[0].Amount.Equal(decimal.RequireFromString("150.00")))

		final := payments[0]
		assert.Equal(t, date(2024, time.May, 15), final.NextPaymentDate)
		assert.Equal(t, int64(4), final.PaymentCount)
		assert.True(t, final.TotalPaid.Equal(decimal.RequireFromString("600.00")))
		assert.Equal(t, date(2024, time.April, 15), *final.LastPaymentDate)
		assert.True(t, final.IsActive)
		store.AssertExpectations(t)
	})

	t.Run("nothing due leaves the definition untouched", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)

		e := testEngine(&store, date(2024, time.February, 10))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "UpsertRecurringPayment", mock.Anything, mock.Anything)
	})

	t.Run("already posted occurrences advance without recounting", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)

		// A previous run posted February before crashing mid-catch-up.
		store.On("InsertTransaction", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.Id == "pay1#occ2"
		})).Return(storage.ErrDuplicateOccurrence).Once()
		store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Twice()
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 2, count)

		final := payments[0]
		assert.Equal(t, date(2024, time.May, 15), final.NextPaymentDate)
		assert.Equal(t, int64(4), final.PaymentCount)
		assert.True(t, final.TotalPaid.Equal(decimal.RequireFromString("600.00")))
		store.AssertExpectations(t)
	})

	t.Run("deactivates once the schedule passes the end date", func(t *testing.T) {
		store := mocks.Storage{}
		payment := monthlyRent()
		payment.EndDate = ptr(date(2024, time.March, 1))
		payments := []models.RecurringPayment{payment}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Once()
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 1, count, "only the occurrence before the end date posts")
		final := payments[0]
		assert.False(t, final.IsActive)
		assert.Equal(t, date(2024, time.March, 15), final.NextPaymentDate)
		store.AssertExpectations(t)
	})

	t.Run("never posts a due date already past the end date", func(t *testing.T) {
		store := mocks.Storage{}
		payment := monthlyRent()
		// The end date was edited below the already-computed due date.
		payment.EndDate = ptr(date(2024, time.February, 1))
		payments := []models.RecurringPayment{payment}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		final := payments[0]
		assert.False(t, final.IsActive)
		assert.Equal(t, date(2024, time.February, 15), final.NextPaymentDate, "the overshoot due date stays unposted")
		store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("reminder-only definitions advance without posting", func(t *testing.T) {
		store := mocks.Storage{}
		payment := monthlyRent()
		payment.AutoCreateTransaction = false
		payments := []models.RecurringPayment{payment}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		final := payments[0]
		assert.Equal(t, date(2024, time.May, 15), final.NextPaymentDate)
		assert.Equal(t, int64(1), final.PaymentCount, "skipped occurrences do not count as paid")
		store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("a broken definition does not block its siblings", func(t *testing.T) {
		store := mocks.Storage{}
		broken := monthlyRent()
		broken.Id = "pay-broken"
		broken.Frequency = "fortnightly"
		healthy := monthlyRent()
		payments := []models.RecurringPayment{broken, healthy}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Times(3)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.ErrorIs(t, err, ErrInvalidSchedule)
		assert.Contains(t, err.Error(), "pay-broken")
		assert.Equal(t, 3, count)
		store.AssertExpectations(t)
	})

	t.Run("caps runaway catch-up and reports the definition", func(t *testing.T) {
		store := mocks.Storage{}
		payment := monthlyRent()
		payment.Frequency = models.Daily
		payment.AutoCreateTransaction = false
		payments := []models.RecurringPayment{payment}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		// Over three years behind a daily schedule.
		e := testEngine(&store, date(2027, time.June, 1))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.ErrorIs(t, err, ErrInvalidSchedule)
		assert.Equal(t, 0, count)
		// Partial progress still persisted so the next run resumes.
		final := payments[0]
		assert.Equal(t, date(2024, time.February, 15).AddDate(0, 0, maxCatchUpOccurrences), final.NextPaymentDate)
		store.AssertExpectations(t)
	})

	t.Run("losing a version race to a concurrent session is not an error", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("InsertTransaction", ctx, mock.Anything).Return(storage.ErrDuplicateOccurrence).Times(3)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(storage.ErrVersionConflict).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		store.AssertExpectations(t)
	})

	t.Run("mid-loop store failure persists progress and reports", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("InsertTransaction", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.Id == "pay1#occ2"
		})).Return(nil).Once()
		storeDown := errors.New("connection reset")
		store.On("InsertTransaction", ctx, mock.Anything).Return(storeDown).Once()
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.ErrorIs(t, err, storeDown)
		assert.Equal(t, 1, count)
		final := payments[0]
		assert.Equal(t, date(2024, time.March, 15), final.NextPaymentDate)
		assert.Equal(t, int64(2), final.PaymentCount)
		store.AssertExpectations(t)
	})

	t.Run("announces posted occurrences on both channels", func(t *testing.T) {
		store := mocks.Storage{}
		payments := []models.RecurringPayment{monthlyRent()}
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
		store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Times(3)
		store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

		events := &recordingEvents{}
		sockets := &recordingSockets{}
		e := New(&store, events, sockets, slog.New(slog.DiscardHandler))
		e.Now = func() time.Time { return date(2024, time.April, 20) }

		count, err := e.ProcessDuePayments(ctx, "user1")

		require.NoError(t, err)
		assert.Equal(t, 3, count)
		require.Len(t, events.events, 3)
		assert.Equal(t, notify.EventPaymentPosted, events.events[0].Type)
		assert.Equal(t, "pay1#occ2", events.events[0].TransactionID)
		assert.Equal(t, "₺150,00", events.events[0].DisplayAmount)
		require.Len(t, sockets.messages, 3)
		assert.Equal(t, websockets.MessageTypeTransactionPosted, sockets.messages[0].Type)
	})

	t.Run("list failure surfaces directly", func(t *testing.T) {
		store := mocks.Storage{}
		storeDown := errors.New("throughput exceeded")
		store.On("ListActiveRecurringPayments", ctx, "user1").Return(nil, storeDown)

		e := testEngine(&store, date(2024, time.April, 20))
		count, err := e.ProcessDuePayments(ctx, "user1")

		require.ErrorIs(t, err, storeDown)
		assert.Equal(t, 0, count)
	})
}

func TestProcessDuePayments_PerFrequencyAdvance(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		freq models.Frequency
		next time.Time
	}{
		{models.Daily, date(2024, time.February, 16)},
		{models.Weekly, date(2024, time.February, 22)},
		{models.Monthly, date(2024, time.March, 15)},
		{models.Yearly, date(2025, time.February, 15)},
	}
	for _, tc := range cases {
		t.Run(string(tc.freq), func(t *testing.T) {
			store := mocks.Storage{}
			payment := monthlyRent()
			payment.Frequency = tc.freq
			payments := []models.RecurringPayment{payment}
			store.On("ListActiveRecurringPayments", ctx, "user1").Return(payments, nil)
			store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Once()
			store.On("UpsertRecurringPayment", ctx, mock.Anything).Return(nil).Once()

			e := testEngine(&store, date(2024, time.February, 15))
			count, err := e.ProcessDuePayments(ctx, "user1")

			require.NoError(t, err)
			assert.Equal(t, 1, count)
			assert.Equal(t, tc.next, payments[0].NextPaymentDate)
		})
	}
}
