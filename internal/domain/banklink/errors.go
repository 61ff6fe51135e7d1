package banklink

import (
	"errors"
	"fmt"

	"doughjo/internal/infrastructure/plaid"
)

// Domain errors
var (
	// ErrNotConfigured means aggregator credentials are absent server-side.
	// Operations fail fast with it before any network call.
	ErrNotConfigured = errors.New("aggregator credentials not configured")

	// ErrExchange means the one-time public token was invalid, expired or
	// already used. The caller must re-initiate linking.
	ErrExchange = errors.New("public token exchange failed")
)

// UpstreamError is a failed aggregator call, carrying the upstream status
// code for diagnostics. Timeouts and transport failures surface here with a
// zero status code.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream call failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError is a local store write that failed after a successful
// upstream step. The already-obtained access token is not retried; the
// partially-exchanged state is treated as a link failure.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist linked accounts: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// classifyUpstream wraps an aggregator client error into the taxonomy.
func classifyUpstream(op string, err error) error {
	if plaid.IsInvalidPublicToken(err) {
		return fmt.Errorf("%w: %v", ErrExchange, err)
	}
	var apiErr *plaid.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Op: op, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &UpstreamError{Op: op, Err: err}
}
