// Package apperror carries the typed failures the order core reports to its callers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable identity of a failure.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindStoreClosed        Kind = "STORE_CLOSED"
	KindProductUnavailable Kind = "PRODUCT_UNAVAILABLE"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindInternal           Kind = "INTERNAL"
)

// HTTPStatus maps a kind to the status code the REST layer answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return 404
	case KindForbidden:
		return 403
	case KindUnauthorized:
		return 401
	case KindValidation:
		return 422
	case KindStoreClosed, KindProductUnavailable, KindInvalidTransition:
		return 400
	case KindInsufficientStock:
		return 409
	default:
		return 500
	}
}

// Error is the domain error type with structured detail.
type Error struct {
	Kind     Kind           // Machine-readable kind
	Message  string         // Human-readable detail
	Metadata map[string]any // Which product, how much stock, ...
	Cause    error          // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a domain error with a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithMetadata creates a domain error carrying detail fields.
func WithMetadata(kind Kind, message string, metadata map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates a domain error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinels for errors.Is comparisons; only Kind is compared.
var (
	ErrNotFound           = New(KindNotFound, "not found")
	ErrForbidden          = New(KindForbidden, "forbidden")
	ErrUnauthorized       = New(KindUnauthorized, "unauthorized")
	ErrStoreClosed        = New(KindStoreClosed, "store closed")
	ErrProductUnavailable = New(KindProductUnavailable, "product unavailable")
	ErrInsufficientStock  = New(KindInsufficientStock, "insufficient stock")
	ErrInvalidTransition  = New(KindInvalidTransition, "invalid transition")
	ErrValidation         = New(KindValidation, "validation error")
	ErrInternal           = New(KindInternal, "internal error")
)

// NotFound reports a missing entity.
func NotFound(entity string, id any) *Error {
	return WithMetadata(KindNotFound, fmt.Sprintf("%s not found", entity), map[string]any{
		"entity": entity,
		"id":     fmt.Sprint(id),
	})
}

// Forbidden reports an actor lacking role or ownership.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Validation reports malformed input.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// KindOf extracts the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From returns err as a domain error, wrapping it as internal if it is not one already.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(KindInternal, "internal error", err)
}

// ProductUnavailable reports a product that is missing, inactive, or in another store.
func ProductUnavailable(productID any) *Error {
	return WithMetadata(KindProductUnavailable,
		fmt.Sprintf("product %v not found or not active in this store", productID),
		map[string]any{"product_id": fmt.Sprint(productID)})
}

// InsufficientStock reports how much of a product is left against what was asked.
func InsufficientStock(productID any, name string, available, requested int) *Error {
	return WithMetadata(KindInsufficientStock,
		fmt.Sprintf("insufficient stock: %s (available: %d, requested: %d)", name, available, requested),
		map[string]any{
			"product_id": fmt.Sprint(productID),
			"available":  available,
			"requested":  requested,
		})
}

// InvalidTransition reports a status change the order's current state does not allow.
func InvalidTransition(from, to string) *Error {
	return WithMetadata(KindInvalidTransition,
		fmt.Sprintf("order in status %q cannot move to %q", from, to),
		map[string]any{"status": from, "target": to})
}
