package commons

import "errors"

var ErrRecordNotFound = errors.New("record not found")

// ErrConflict signals an optimistic version mismatch on a store write. It is
// expected and frequent under contention; callers abort the current unit of
// work and rely on a later poll cycle, never on internal retry.
var ErrConflict = errors.New("optimistic version conflict")

var ErrDuplicateEntry = errors.New("settlement entry already exists for request")

var ErrNoFundingAccount = errors.New("no funding account available")

var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrValidation marks intake guard failures so the HTTP layer can map them
// to a client error instead of a server fault.
var ErrValidation = errors.New("validation failed")
