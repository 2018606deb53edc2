package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/kaan/pocketledger/pkg/models"
	"github.com/kaan/pocketledger/pkg/storage"
)

// CreateRecurringPayment persists a new payment definition with server-side
// fields filled in.
func (s *Store) CreateRecurringPayment(ctx context.Context, payment *models.RecurringPayment) (*models.RecurringPayment, error) {
	now := time.Now()
	payment.Id = uuid.New().String()
	payment.Version = 1
	payment.CreatedAt = now
	payment.UpdatedAt = now

	item, err := marshalItem(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recurring payment: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.PaymentsTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to create recurring payment in DynamoDB: %w", err)
	}

	return payment, nil
}

// GetRecurringPayment retrieves a payment definition by id. Definitions owned
// by another user are reported as not found.
func (s *Store) GetRecurringPayment(ctx context.Context, userID, paymentID string) (*models.RecurringPayment, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": paymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.PaymentsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring payment from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrPaymentNotFound
	}

	var payment models.RecurringPayment
	if err := unmarshalItem(result.Item, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recurring payment: %w", err)
	}
	if payment.UserId != userID {
		return nil, storage.ErrPaymentNotFound
	}

	return &payment, nil
}

// ListRecurringPayments retrieves all payment definitions owned by the user.
func (s *Store) ListRecurringPayments(ctx context.Context, userID string) ([]models.RecurringPayment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.PaymentsTableName),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring payments: %w", err)
	}

	var payments []models.RecurringPayment
	if err := unmarshalItems(result.Items, &payments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recurring payments: %w", err)
	}

	return payments, nil
}

// ListActiveRecurringPayments retrieves the user's active definitions, the
// engine's working set.
func (s *Store) ListActiveRecurringPayments(ctx context.Context, userID string) ([]models.RecurringPayment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.PaymentsTableName),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		FilterExpression:       aws.String("is_active = :active"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query active recurring payments: %w", err)
	}

	var payments []models.RecurringPayment
	if err := unmarshalItems(result.Items, &payments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recurring payments: %w", err)
	}

	return payments, nil
}

// UpsertRecurringPayment persists an updated definition with an optimistic
// version check. The item is written with the version bumped by one; if
// another session bumped it first the conditional fails and the caller gets
// ErrVersionConflict.
func (s *Store) UpsertRecurringPayment(ctx context.Context, payment *models.RecurringPayment) error {
	current := payment.Version
	payment.Version = current + 1

	item, err := marshalItem(payment)
	if err != nil {
		payment.Version = current
		return fmt.Errorf("failed to marshal recurring payment: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.PaymentsTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(id) AND version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current)},
		},
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		payment.Version = current
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to upsert recurring payment in DynamoDB: %w", err)
	}

	return nil
}

// DeleteRecurringPayment removes one of the user's payment definitions.
func (s *Store) DeleteRecurringPayment(ctx context.Context, userID, paymentID string) error {
	// Ownership check first; the table is keyed by id alone.
	if _, err := s.GetRecurringPayment(ctx, userID, paymentID); err != nil {
		return err
	}

	key, err := attributevalue.MarshalMap(map[string]string{"id": paymentID})
	if err != nil {
		return fmt.Errorf("failed to marshal payment ID for deletion: %w", err)
	}

	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.PaymentsTableName),
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(id)"),
	}

	if _, err := s.Client.DeleteItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrPaymentNotFound
		}
		return fmt.Errorf("failed to delete recurring payment from DynamoDB: %w", err)
	}

	return nil
}

// ListUpcomingReminders scans for active definitions, across all users, due on
// or before the cutoff. The reminder lambda narrows the result per definition
// using each item's reminder window.
func (s *Store) ListUpcomingReminders(ctx context.Context, cutoff time.Time) ([]models.RecurringPayment, error) {
	cutoffStr, err := cutoff.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.PaymentsTableName),
		FilterExpression: aws.String("is_active = :active AND next_payment_date <= :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffStr)},
		},
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for upcoming reminders: %w", err)
	}

	var payments []models.RecurringPayment
	if err := unmarshalItems(result.Items, &payments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upcoming reminders: %w", err)
	}

	return payments, nil
}
