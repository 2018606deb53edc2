package storage

import "errors"

// ErrDuplicateOccurrence is returned when an occurrence transaction was
// already posted by an earlier run. Callers treat it as success-skip.
var ErrDuplicateOccurrence = errors.New("occurrence already posted")

// ErrPaymentNotFound is returned when a recurring payment does not exist or
// belongs to a different user.
var ErrPaymentNotFound = errors.New("recurring payment not found")

// ErrTransactionNotFound is returned when a transaction does not exist or
// belongs to a different user.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrVersionConflict is returned when a versioned write lost a race against a
// concurrent session. The store already holds the winner's state.
var ErrVersionConflict = errors.New("payment was modified by a concurrent session")

// ErrAccountNotFound is returned when an account does not exist or belongs to
// a different user.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when creating an account with an id that is
// already taken.
var ErrAccountExists = errors.New("account already exists")
