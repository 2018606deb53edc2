package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeTransactionPosted is for messages announcing a newly posted
	// ledger transaction, so other signed-in devices refresh immediately.
	MessageTypeTransactionPosted MessageType = "transactionPosted"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// TransactionPostedPayload is the payload for a transactionPosted message.
type TransactionPostedPayload struct {
	UserID             string `json:"user_id"`
	TransactionID      string `json:"transaction_id"`
	RecurringPaymentID string `json:"recurring_payment_id,omitempty"`
	Amount             string `json:"amount"`
	Date               string `json:"date"`
}
