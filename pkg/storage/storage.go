package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on
// the more granular interfaces (ApiStore, EngineStore, etc.) instead of this one.
type Storage interface {
	ApiStore
	ReminderReader
	ConnectionManager
}

// EngineStore is the slice of storage the recurring payment engine needs:
// reading and advancing payment definitions, and posting their occurrences.
type EngineStore interface {
	PaymentStore
	TransactionStore
}
