// Package errors provides custom error types for the complaint dashboard.
//
// Each error type carries enough context for the HTTP layer to pick a status
// code and for logs to explain what went wrong. Feed degradation such as a
// malformed row is handled in place and never produces an error.
package errors

import (
	stderrors "errors"
	"fmt"
)

// FetchError indicates that a published feed could not be retrieved.
//
// This error is returned when:
//   - DNS or connection setup fails
//   - The request times out
//   - The feed body cannot be read
//
// Recovery strategy: none automatic; the next refresh tries again.
type FetchError struct {
	Feed    string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch error: %s feed: %s: %v", e.Feed, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch error: %s feed: %s", e.Feed, e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error with context
func NewFetchError(feed, msg string, err error) *FetchError {
	return &FetchError{Feed: feed, Message: msg, Err: err}
}

// DispatchError indicates that a mutation intent never left this process.
//
// Only transport-level failures are observable. A dispatched request whose
// remote outcome is unknown is not an error.
type DispatchError struct {
	Action  string
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch error: %s: %s: %v", e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("dispatch error: %s: %s", e.Action, e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// NewDispatchError creates a new dispatch error with context
func NewDispatchError(action, msg string, err error) *DispatchError {
	return &DispatchError{Action: action, Message: msg, Err: err}
}

// OversizeError rejects an upload that exceeds the configured ceiling.
type OversizeError struct {
	Size  int64
	Limit int64
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("image too large: %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}

// NewOversizeError creates a new oversize error
func NewOversizeError(size, limit int64) *OversizeError {
	return &OversizeError{Size: size, Limit: limit}
}

// UnauthorizedError indicates a missing admin privilege or a wrong admin secret.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{Message: msg}
}

// ConfirmationRequiredError is returned when a destructive action lacks explicit confirmation.
type ConfirmationRequiredError struct {
	ID string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required to delete report %s", e.ID)
}

// NewConfirmationRequiredError creates a new confirmation error
func NewConfirmationRequiredError(id string) *ConfirmationRequiredError {
	return &ConfirmationRequiredError{ID: id}
}

// ValidationError reports an invalid form draft or request value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Message)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// IsFetch checks if the error chain contains a FetchError
func IsFetch(err error) bool {
	var target *FetchError
	return stderrors.As(err, &target)
}

// IsDispatch checks if the error chain contains a DispatchError
func IsDispatch(err error) bool {
	var target *DispatchError
	return stderrors.As(err, &target)
}

// IsOversize checks if the error chain contains an OversizeError
func IsOversize(err error) bool {
	var target *OversizeError
	return stderrors.As(err, &target)
}

// IsUnauthorized checks if the error chain contains an UnauthorizedError
func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return stderrors.As(err, &target)
}

// IsConfirmationRequired checks if the error chain contains a ConfirmationRequiredError
func IsConfirmationRequired(err error) bool {
	var target *ConfirmationRequiredError
	return stderrors.As(err, &target)
}

// IsValidation checks if the error chain contains a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}
