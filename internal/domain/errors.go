package domain

import (
	"errors"
	"fmt"
)

// The error taxonomy of the view layer. Repository and resolver failures are
// typed results, never silent nils, so callers can decide retry and fallback
// behavior per class:
//
//   - ConnectionError: transport/timeout, retryable
//   - DecodeError: schema mismatch or truncation, never retryable
//   - NotFoundError: absent single-record lookup
//   - UnauthorizedError: signing attempted without a signing capability
//   - ValidationError: structurally invalid input or unresolvable relation

// ConnectionError indicates the ledger RPC endpoint was unreachable or the
// call timed out. Safe to retry with backoff.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ledger connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DecodeError indicates an account's raw bytes did not match the expected
// schema for its entity kind. This is version skew, not transient noise, and
// must never be retried.
type DecodeError struct {
	Kind   EntityKind
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s account: %s", e.Kind, e.Reason)
}

// NotFoundError indicates a single-record fetch against an absent address.
type NotFoundError struct {
	Kind    EntityKind
	Address Address
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s account not found at %s", e.Kind, e.Address)
}

// UnauthorizedError indicates a signing operation was attempted on a
// read-only handle, or the signer does not match an owner-restricted record.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

// ValidationError indicates structurally invalid input: bad seeds, a
// malformed address, or a relation that failed to resolve when one was
// expected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// IsRetryable reports whether an error is connection-class and therefore
// eligible for the bounded backoff policy. Decode and validation failures
// are permanent by definition.
func IsRetryable(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
