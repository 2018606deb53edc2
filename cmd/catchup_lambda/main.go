package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/kaan/pocketledger/pkg/engine"
	"github.com/kaan/pocketledger/pkg/notify"
	dydbstore "github.com/kaan/pocketledger/pkg/storage/dynamodb"
)

var paymentEngine *engine.Engine

// sessionEvent is enqueued by the auth service when a user session starts.
type sessionEvent struct {
	UserID string `json:"user_id"`
}

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	paymentsTable := os.Getenv("DYNAMODB_RECURRING_PAYMENTS_TABLE_NAME")
	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	connectionsTable := os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")
	if paymentsTable == "" || transactionsTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	store := dydbstore.New(dbClient, paymentsTable, transactionsTable, accountsTable, connectionsTable)

	var eventsPublisher notify.Publisher
	if queueURL := os.Getenv("SQS_EVENTS_QUEUE_URL"); queueURL != "" {
		eventsPublisher = notify.NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL)
	}

	paymentEngine = engine.New(store, eventsPublisher, nil, logger)
}

// HandleRequest catches up recurring payments for each user whose session
// just started. A failed user returns an error so SQS redelivers; occurrences
// posted before the failure are deduplicated on retry.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		var session sessionEvent
		if err := json.Unmarshal([]byte(message.Body), &session); err != nil {
			log.Printf("ERROR: failed to unmarshal session event from SQS message %s: %v", message.MessageId, err)
			return err
		}

		posted, err := paymentEngine.ProcessDuePayments(ctx, session.UserID)
		if err != nil {
			log.Printf("ERROR: catch-up for user %s posted %d and failed: %v", session.UserID, posted, err)
			return err
		}
		log.Printf("Caught up user %s: %d occurrences posted", session.UserID, posted)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
