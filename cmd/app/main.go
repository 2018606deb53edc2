package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/kaan/pocketledger/pkg/auth"
	"github.com/kaan/pocketledger/pkg/engine"
	"github.com/kaan/pocketledger/pkg/handlers/accounts"
	"github.com/kaan/pocketledger/pkg/handlers/recurring"
	"github.com/kaan/pocketledger/pkg/handlers/transactions"
	wshandlers "github.com/kaan/pocketledger/pkg/handlers/websockets"
	appmiddleware "github.com/kaan/pocketledger/pkg/middleware"
	"github.com/kaan/pocketledger/pkg/notify"
	dydbstore "github.com/kaan/pocketledger/pkg/storage/dynamodb"
	"github.com/kaan/pocketledger/pkg/websockets"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	paymentsTable := os.Getenv("DYNAMODB_RECURRING_PAYMENTS_TABLE_NAME")
	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	connectionsTable := os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")
	if paymentsTable == "" || transactionsTable == "" || accountsTable == "" || connectionsTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	store := dydbstore.New(dbClient, paymentsTable, transactionsTable, accountsTable, connectionsTable)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	verifier := auth.NewVerifier([]byte(jwtSecret))

	// Payment events are optional locally; without a queue the engine simply
	// skips publishing.
	var events notify.Publisher
	if queueURL := os.Getenv("SQS_EVENTS_QUEUE_URL"); queueURL != "" {
		events = notify.NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL)
	}

	var publisher websockets.Publisher = &websockets.NoOpPublisher{}
	if wsEndpoint := os.Getenv("WEBSOCKET_API_ENDPOINT"); wsEndpoint != "" {
		publisher, err = websockets.NewPublisher(store, store, wsEndpoint)
		if err != nil {
			log.Fatalf("failed to create websocket publisher: %v", err)
		}
	}

	paymentEngine := engine.New(store, events, publisher, logger)

	recurringHandler := recurring.NewHandler(store, paymentEngine, logger)
	transactionsHandler := transactions.NewHandler(store, logger)
	accountsHandler := accounts.NewHandler(store, logger)
	wsHandler := wshandlers.NewHandler(store, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(appmiddleware.NewStructuredLogger(logger))

	// Device socket for local development; API Gateway handles production.
	router.Handle("/ws", wsHandler)

	router.Group(func(r chi.Router) {
		r.Use(appmiddleware.Authenticate(verifier))

		r.Route("/recurring-payments", func(r chi.Router) {
			r.Post("/", recurringHandler.CreatePayment)
			r.Get("/", recurringHandler.ListPayments)
			r.Post("/process", recurringHandler.ProcessDue)

			r.Route("/{paymentID}", func(r chi.Router) {
				r.Get("/", withParam("paymentID", recurringHandler.GetPayment))
				r.Put("/", withParam("paymentID", recurringHandler.UpdatePayment))
				r.Delete("/", withParam("paymentID", recurringHandler.DeletePayment))
				r.Post("/pay", withParam("paymentID", recurringHandler.PayNow))
				r.Post("/skip", withParam("paymentID", recurringHandler.Skip))
				r.Post("/toggle", withParam("paymentID", recurringHandler.Toggle))
			})
		})

		r.Get("/transactions", transactionsHandler.ListTransactions)
		r.Get("/transactions/{transactionID}", withParam("transactionID", transactionsHandler.GetTransactionById))

		r.Post("/accounts", accountsHandler.CreateAccount)
		r.Get("/accounts", accountsHandler.ListAccounts)
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting server", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// withParam adapts a handler taking a path parameter to http.HandlerFunc.
func withParam(name string, fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, chi.URLParam(r, name))
	}
}
