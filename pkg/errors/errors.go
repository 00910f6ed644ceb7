package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an application error. The set is closed; the transport
// layer maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidID
	KindValidation
	KindNotFound
	KindAlreadyExists
	KindUpstream
	KindStorage
)

// String returns a snake_case name for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindInvalidID:
		return "invalid_id"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindUpstream:
		return "upstream"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Kinded is implemented by every error type in this package.
type Kinded interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first Kinded error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var k Kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// InvalidIDError reports an identifier that is not a base-10 integer in range.
type InvalidIDError struct {
	Value   string
	Message string
	Err     error
}

// NewInvalidIDError creates a new invalid id error
func NewInvalidIDError(value, message string, err error) *InvalidIDError {
	return &InvalidIDError{Value: value, Message: message, Err: err}
}

// Error implements the error interface
func (e *InvalidIDError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid id %q", e.Value)
}

func (e *InvalidIDError) Unwrap() error { return e.Err }

// Kind implements Kinded
func (e *InvalidIDError) Kind() Kind { return KindInvalidID }

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Fields  []string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Kind implements Kinded
func (e *ValidationError) Kind() Kind { return KindValidation }

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       int64
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, id int64, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Kind implements Kinded
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	ID       int64
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource string, id int64, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		ID:       id,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %d already exists", e.Resource, e.ID)
}

// Kind implements Kinded
func (e *AlreadyExistsError) Kind() Kind { return KindAlreadyExists }

// UpstreamError reports a failed request to the remote API.
// StatusCode is zero for transport and decode failures.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(url string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{URL: url, StatusCode: statusCode, Err: err}
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch from %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch from %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Kind implements Kinded
func (e *UpstreamError) Kind() Kind { return KindUpstream }

// StorageError wraps a failure reported by the storage driver.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

// NewStorageError creates a new storage error
func NewStorageError(op, collection string, err error) *StorageError {
	return &StorageError{Op: op, Collection: collection, Err: err}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Kind implements Kinded
func (e *StorageError) Kind() Kind { return KindStorage }

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// Kind implements Kinded
func (e *InternalError) Kind() Kind { return KindInternal }
