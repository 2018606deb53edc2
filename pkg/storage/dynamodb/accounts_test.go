package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
	"github.com/kaan/pocketledger/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testAccount() *models.Account {
	return &models.Account{
		UserId:   "user1",
		Name:     "Checking",
		Currency: "TRY",
		Balance:  decimal.NewFromInt(2500),
	}
}

func TestCreateAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.PutItemOutput{}, nil)

		created, err := store.CreateAccount(context.Background(), testAccount())

		assert.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		account := testAccount()
		account.Id = "acc1"
		_, err := store.CreateAccount(context.Background(), account)

		assert.ErrorIs(t, err, storage.ErrAccountExists)
		mockClient.AssertExpectations(t)
	})
}

func TestGetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		account := testAccount()
		account.Id = "acc1"
		item, _ := marshalItem(account)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		got, err := store.GetAccount(context.Background(), "user1", "acc1")

		assert.NoError(t, err)
		assert.Equal(t, "acc1", got.Id)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(2500)))
		mockClient.AssertExpectations(t)
	})

	t.Run("Foreign Owner Hidden", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		account := testAccount()
		account.Id = "acc1"
		account.UserId = "someone-else"
		item, _ := marshalItem(account)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		_, err := store.GetAccount(context.Background(), "user1", "acc1")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestListAccounts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		account := testAccount()
		account.Id = "acc1"
		item, _ := marshalItem(account)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

		accounts, err := store.ListAccounts(context.Background(), "user1")

		assert.NoError(t, err)
		assert.Len(t, accounts, 1)
		mockClient.AssertExpectations(t)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListAccounts(context.Background(), "user1")

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}
