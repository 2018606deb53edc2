package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
	"github.com/kaan/pocketledger/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testPayment() *models.RecurringPayment {
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return &models.RecurringPayment{
		UserId:                "user1",
		Name:                  "Rent",
		Category:              "Housing",
		AccountId:             "acc1",
		Amount:                decimal.NewFromInt(150),
		Frequency:             models.Monthly,
		StartDate:             start,
		NextPaymentDate:       start,
		IsActive:              true,
		AutoCreateTransaction: true,
	}
}

func TestCreateRecurringPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.PutItemOutput{}, nil)

		payment := testPayment()
		created, err := store.CreateRecurringPayment(context.Background(), payment)

		assert.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, int64(1), created.Version)
		assert.False(t, created.CreatedAt.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Put Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("put failed"))

		_, err := store.CreateRecurringPayment(context.Background(), testPayment())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create recurring payment")
		mockClient.AssertExpectations(t)
	})
}

func TestGetRecurringPayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		payment := testPayment()
		payment.Id = "pay1"
		item, _ := marshalItem(payment)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		got, err := store.GetRecurringPayment(context.Background(), "user1", "pay1")

		assert.NoError(t, err)
		assert.Equal(t, "pay1", got.Id)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(150)))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.GetRecurringPayment(context.Background(), "user1", "missing")

		assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Foreign Owner Hidden", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		payment := testPayment()
		payment.Id = "pay1"
		payment.UserId = "someone-else"
		item, _ := marshalItem(payment)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		_, err := store.GetRecurringPayment(context.Background(), "user1", "pay1")

		assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestUpsertRecurringPayment(t *testing.T) {
	t.Run("Success Bumps Version", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.PutItemOutput{}, nil)

		payment := testPayment()
		payment.Id = "pay1"
		payment.Version = 3

		err := store.UpsertRecurringPayment(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), payment.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Version Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		payment := testPayment()
		payment.Id = "pay1"
		payment.Version = 3

		err := store.UpsertRecurringPayment(context.Background(), payment)

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
		// The in-memory version must not drift when the write lost.
		assert.Equal(t, int64(3), payment.Version)
		mockClient.AssertExpectations(t)
	})
}

func TestListActiveRecurringPayments(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		payment := testPayment()
		payment.Id = "pay1"
		item, _ := marshalItem(payment)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

		payments, err := store.ListActiveRecurringPayments(context.Background(), "user1")

		assert.NoError(t, err)
		assert.Len(t, payments, 1)
		assert.Equal(t, "pay1", payments[0].Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PaymentsTableName: "payments"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListActiveRecurringPayments(context.Background(), "user1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query active recurring payments")
		mockClient.AssertExpectations(t)
	})
}

func TestListUpcomingReminders(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := &Store{Client: mockClient, PaymentsTableName: "payments"}

	payment := testPayment()
	payment.Id = "pay1"
	item, _ := marshalItem(payment)
	mockClient.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{item}}, nil)

	payments, err := store.ListUpcomingReminders(context.Background(), time.Now().Add(30*24*time.Hour))

	assert.NoError(t, err)
	assert.Len(t, payments, 1)
	mockClient.AssertExpectations(t)
}
