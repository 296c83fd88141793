package domain

import (
	"errors"
	"fmt"
)

// Typed pipeline errors. Every stage raises one of these kinds; only the
// HTTP handler chooses user-facing messages from them.
var (
	// ErrTransientTransport marks a retryable transport failure of the
	// completion call. It is handled inside the completion client and only
	// surfaces when all retries are exhausted.
	ErrTransientTransport = errors.New("transient transport failure")

	// ErrCompletionTimeout fires when the 90s business deadline on the
	// completion call is exceeded, regardless of transport retry state.
	ErrCompletionTimeout = errors.New("completion call timed out")

	// ErrCompletionProvider marks a non-transient provider failure
	// (4xx/5xx, auth, malformed request). Never retried.
	ErrCompletionProvider = errors.New("completion provider error")

	// ErrFormat marks an unparsable completion payload.
	ErrFormat = errors.New("malformed completion response")

	// ErrPersistence marks a failed menu/event transaction. The transaction
	// is rolled back; no partial state is ever visible.
	ErrPersistence = errors.New("menu persistence failed")
)

// InsufficientHistoryError is raised by the pre-flight gate when the tenant
// has too few historical dishes to honor a non-zero history ratio. Actual
// and Required are surfaced verbatim to the caller.
type InsufficientHistoryError struct {
	Actual   int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient historical dishes: have %d, need at least %d", e.Actual, e.Required)
}
