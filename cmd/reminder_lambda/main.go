package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/kaan/pocketledger/pkg/notify"
	"github.com/kaan/pocketledger/pkg/storage"
	dydbstore "github.com/kaan/pocketledger/pkg/storage/dynamodb"
)

var store storage.ReminderReader
var publisher notify.Publisher

// maxReminderWindow bounds the scan; individual definitions narrow it with
// their own ReminderDays setting.
const maxReminderWindow = 30 * 24 * time.Hour

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	paymentsTable := os.Getenv("DYNAMODB_RECURRING_PAYMENTS_TABLE_NAME")
	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	connectionsTable := os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")
	if paymentsTable == "" {
		log.Fatal("DYNAMODB_RECURRING_PAYMENTS_TABLE_NAME environment variable not set")
	}

	queueURL := os.Getenv("SQS_EVENTS_QUEUE_URL")
	if queueURL == "" {
		log.Fatal("SQS_EVENTS_QUEUE_URL environment variable not set")
	}
	publisher = notify.NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL)

	store = dydbstore.New(dbClient, paymentsTable, transactionsTable, accountsTable, connectionsTable)
}

// HandleRequest is triggered by an EventBridge Schedule. It finds active
// definitions whose next due date falls inside their reminder window and
// enqueues a reminder event for each.
func HandleRequest(ctx context.Context) error {
	now := time.Now().UTC()

	candidates, err := store.ListUpcomingReminders(ctx, now.Add(maxReminderWindow))
	if err != nil {
		log.Printf("ERROR: failed to list upcoming payments: %v", err)
		return err
	}

	sent := 0
	for _, payment := range candidates {
		if payment.ReminderDays <= 0 {
			continue
		}
		windowStart := payment.NextPaymentDate.AddDate(0, 0, -payment.ReminderDays)
		if now.Before(windowStart) {
			continue
		}

		event := notify.Event{
			Type:        notify.EventPaymentReminder,
			UserID:      payment.UserId,
			PaymentID:   payment.Id,
			PaymentName: payment.Name,
			Amount:      payment.Amount,
			DueDate:     payment.NextPaymentDate,
		}
		if err := publisher.Publish(ctx, event); err != nil {
			log.Printf("ERROR: failed to enqueue reminder for payment %s: %v", payment.Id, err)
			// Continue to the next payment, don't let one failure stop the batch.
			continue
		}
		sent++
	}

	log.Printf("Reminder sweep finished: %d of %d candidates enqueued", sent, len(candidates))
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
