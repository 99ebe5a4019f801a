package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Handlers use this to translate domain failures without enumerating
// every concrete error type.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrStorage indicates an object-store operation failed.
	ErrStorage = errors.New("object storage failure")
	// ErrUnreachable indicates an uploaded blob could not be read back.
	ErrUnreachable = errors.New("stored object not reachable")
	// ErrConversionFailed indicates an external conversion job reached a
	// terminal failure state.
	ErrConversionFailed = errors.New("conversion failed")
)

// ConflictError represents a resource conflict with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string // document, project
	ResourceID   string // ID of the existing resource
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// CascadeError wraps a failure while enumerating or deleting a document
// subtree. The target document must not be assumed gone when one of
// these propagates.
type CascadeError struct {
	DocumentID string
	Err        error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete of document %s: %v", e.DocumentID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

func (e *CascadeError) StatusCode() int { return http.StatusInternalServerError }

// TokenExchangeError carries the failures from both token endpoint
// versions. Raised only after the v1 fallback also failed.
type TokenExchangeError struct {
	V2 error
	V1 error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("both v2 and v1 token endpoints failed: v2: %v; v1: %v", e.V2, e.V1)
}

func (e *TokenExchangeError) StatusCode() int { return http.StatusInternalServerError }
