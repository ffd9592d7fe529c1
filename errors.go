package finboard

import (
	"errors"
	"fmt"
)

// ErrSyncInFlight is returned when a price sync is requested while another
// one is still running.
var ErrSyncInFlight = errors.New("price sync already in flight")

// LookupError reports that the external price or advice service was
// unreachable or returned an error. No state has been mutated.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string { return fmt.Sprintf("price lookup failed: %v", e.Err) }
func (e *LookupError) Unwrap() error { return e.Err }

// ValidationError reports a transaction or account operation that failed its
// precondition checks. It is rejected before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports a revert attempted on a transaction that is not
// currently applied.
type InvalidStateError struct {
	TxID string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("transaction %q is not currently applied", e.TxID)
}

// ConsistencyError reports a multi-step write that partially completed,
// leaving the ledger inconsistent. It carries the entity and the attempted
// delta so the store can be reconciled by hand; it is never masked.
type ConsistencyError struct {
	Entity string // entity id (account id, holding symbol)
	Delta  string // attempted change, human readable
	Err    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency hazard on %q (attempted %s): %v", e.Entity, e.Delta, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
