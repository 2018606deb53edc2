package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency defines how often a recurring payment repeats.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// TransactionType defines the direction of a ledger transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// RecurringPayment is the internal domain model for a recurring payment
// definition. It includes dynamodbav tags for marshalling.
type RecurringPayment struct {
	Id           string `json:"id" dynamodbav:"id"`
	UserId       string `json:"user_id" dynamodbav:"user_id"`
	Name         string `json:"name" dynamodbav:"name"`
	Description  string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Category     string `json:"category" dynamodbav:"category"`
	CategoryIcon string `json:"category_icon,omitempty" dynamodbav:"category_icon,omitempty"`
	AccountId    string `json:"account_id" dynamodbav:"account_id"`

	Amount    decimal.Decimal `json:"amount" dynamodbav:"amount"`
	Frequency Frequency       `json:"frequency" dynamodbav:"frequency"`

	StartDate       time.Time  `json:"start_date" dynamodbav:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" dynamodbav:"end_date,omitempty"`
	NextPaymentDate time.Time  `json:"next_payment_date" dynamodbav:"next_payment_date"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty" dynamodbav:"last_payment_date,omitempty"`

	IsActive              bool `json:"is_active" dynamodbav:"is_active"`
	AutoCreateTransaction bool `json:"auto_create_transaction" dynamodbav:"auto_create_transaction"`
	ReminderDays          int  `json:"reminder_days" dynamodbav:"reminder_days"`

	TotalPaid    decimal.Decimal `json:"total_paid" dynamodbav:"total_paid"`
	PaymentCount int64           `json:"payment_count" dynamodbav:"payment_count"`

	// Version is an optimistic-lock counter. Every persisted mutation must
	// carry the version it read and bumps it by one.
	Version   int64     `json:"version" dynamodbav:"version"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// NextOccurrenceIndex returns the 1-based index of the next occurrence to post.
func (p *RecurringPayment) NextOccurrenceIndex() int64 {
	return p.PaymentCount + 1
}

// OccurrenceID builds the deterministic transaction id for one occurrence of a
// recurring payment. The id doubles as the storage uniqueness key that keeps
// posting at-most-once under retries and concurrent sessions.
func OccurrenceID(paymentID string, index int64) string {
	return fmt.Sprintf("%s#occ%d", paymentID, index)
}

// Transaction represents a single financial ledger entry.
type Transaction struct {
	Id        string          `json:"id" dynamodbav:"id"`
	UserId    string          `json:"user_id" dynamodbav:"user_id"`
	AccountId string          `json:"account_id" dynamodbav:"account_id"`
	Name      string          `json:"name" dynamodbav:"name"`
	Category  string          `json:"category" dynamodbav:"category"`
	Amount    decimal.Decimal `json:"amount" dynamodbav:"amount"`
	Type      TransactionType `json:"type" dynamodbav:"type"`

	// Date is the occurrence date the entry belongs to, not the wall-clock
	// time it was written.
	Date time.Time `json:"date" dynamodbav:"date"`

	// Back-references for entries generated from a recurring payment.
	RecurringPaymentId string `json:"recurring_payment_id,omitempty" dynamodbav:"recurring_payment_id,omitempty"`
	OccurrenceIndex    int64  `json:"occurrence_index,omitempty" dynamodbav:"occurrence_index,omitempty"`

	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Account is a user's money account that transactions and recurring payments
// reference.
type Account struct {
	Id        string          `json:"id" dynamodbav:"id"`
	UserId    string          `json:"user_id" dynamodbav:"user_id"`
	Name      string          `json:"name" dynamodbav:"name"`
	Currency  string          `json:"currency" dynamodbav:"currency"`
	Balance   decimal.Decimal `json:"balance" dynamodbav:"balance"`
	CreatedAt time.Time       `json:"created_at" dynamodbav:"created_at"`
}
