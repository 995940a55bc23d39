package core

import (
	"errors"
	"fmt"

	"github.com/gogpu/rendergraph/descriptor"
)

// Base errors for the core package.
var (
	// ErrInvalidID is returned when an ID is invalid (zero). A stale ID
	// whose epoch no longer matches its slot gets ErrEpochMismatch
	// instead. A debug build should assert on this; a release build
	// returns it so the caller can decide how to fail.
	ErrInvalidID = errors.New("invalid resource ID")

	// ErrResourceNotFound is returned when a resource is not found in the registry.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrEpochMismatch is returned when the epoch of an ID doesn't match the stored resource.
	ErrEpochMismatch = errors.New("epoch mismatch: resource was recycled")

	// ErrRegistryFull reports that a registry cannot allocate more IDs.
	// Registry grows its slot storage on demand, so Register never
	// returns it.
	ErrRegistryFull = errors.New("registry full: maximum resources reached")

	// ErrOutOfDescriptors is returned when the descriptor allocator cannot
	// satisfy an allocation request without crossing a heap boundary.
	// This is fatal: the caller should abort with a diagnostic rather
	// than attempt to continue rendering.
	ErrOutOfDescriptors = descriptor.ErrOutOfDescriptors

	// ErrDeviceLost is returned when the GPU device is lost (driver
	// crash, GPU reset, or removal). This is fatal and unrecoverable;
	// the backend must be torn down and recreated.
	ErrDeviceLost = errors.New("device lost")

	// ErrResourceDestroyed reports an operation on a handle whose
	// resource has already been retired. The resource tables do not
	// return it: a retired handle resolves to ErrEpochMismatch.
	ErrResourceDestroyed = errors.New("resource destroyed")
)

// ValidationError represents a recoverable creation failure: a resource
// could not be created because of bad parameters or a HAL-level
// rejection. It is logged and no handle is returned; the caller is
// expected to keep running.
type ValidationError struct {
	Resource string // Resource type (e.g., "Buffer", "Texture")
	Field    string // Field that failed validation
	Message  string // Detailed error message
	Cause    error  // Underlying cause, if any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Resource, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error.
func NewValidationError(resource, field, message string) *ValidationError {
	return &ValidationError{
		Resource: resource,
		Field:    field,
		Message:  message,
	}
}

// NewValidationErrorf creates a new validation error with formatted message.
func NewValidationErrorf(resource, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Resource: resource,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IDError represents an error related to resource IDs.
type IDError struct {
	ID      RawID  // The problematic ID
	Message string // Error description
	Cause   error  // Underlying cause
}

// Error implements the error interface.
func (e *IDError) Error() string {
	index, epoch := e.ID.Unzip()
	return fmt.Sprintf("ID(%d,%d): %s", index, epoch, e.Message)
}

// Unwrap returns the underlying cause.
func (e *IDError) Unwrap() error {
	return e.Cause
}

// NewIDError creates a new ID error.
func NewIDError(id RawID, message string, cause error) *IDError {
	return &IDError{
		ID:      id,
		Message: message,
		Cause:   cause,
	}
}

// LimitError represents exceeding a resource limit, such as the fixed
// number of simultaneous fluid volumes a simulation pass supports.
type LimitError struct {
	Limit    string // Name of the limit
	Actual   uint64 // Actual value
	Maximum  uint64 // Maximum allowed value
	Resource string // Resource type affected
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s exceeded (got %d, max %d)",
		e.Resource, e.Limit, e.Actual, e.Maximum)
}

// NewLimitError creates a new limit error.
func NewLimitError(resource, limit string, actual, maximum uint64) *LimitError {
	return &LimitError{
		Limit:    limit,
		Actual:   actual,
		Maximum:  maximum,
		Resource: resource,
	}
}

// StateViolationError represents a caller-side misuse of the API, such
// as a Dispatch or Draw with no matching pipeline bound, a pipeline of
// the wrong kind, or a command list closed twice. These checks run in
// every build.
type StateViolationError struct {
	Resource string
	Message  string
}

// Error implements the error interface.
func (e *StateViolationError) Error() string {
	return fmt.Sprintf("%s: state violation: %s", e.Resource, e.Message)
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIDError returns true if the error is an IDError.
func IsIDError(err error) bool {
	var ie *IDError
	return errors.As(err, &ie)
}

// IsLimitError returns true if the error is a LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// IsStateViolationError returns true if the error is a StateViolationError.
func IsStateViolationError(err error) bool {
	var se *StateViolationError
	return errors.As(err, &se)
}

// CreateBufferErrorKind represents the type of buffer creation error.
type CreateBufferErrorKind int

const (
	// CreateBufferErrorZeroSize indicates buffer size was zero.
	CreateBufferErrorZeroSize CreateBufferErrorKind = iota
	// CreateBufferErrorMaxBufferSize indicates buffer size exceeded device limit.
	CreateBufferErrorMaxBufferSize
	// CreateBufferErrorInvalidUsage indicates an unrecognized usage class.
	CreateBufferErrorInvalidUsage
	// CreateBufferErrorHAL indicates the native device failed to create the buffer.
	CreateBufferErrorHAL
)

// CreateBufferError represents an error during buffer creation.
type CreateBufferError struct {
	Kind          CreateBufferErrorKind
	Label         string
	RequestedSize uint64
	MaxSize       uint64
	HALError      error
}

// Error implements the error interface.
func (e *CreateBufferError) Error() string {
	label := e.Label
	if label == "" {
		label = "<unnamed>"
	}

	switch e.Kind {
	case CreateBufferErrorZeroSize:
		return fmt.Sprintf("buffer %q: size must be greater than 0", label)
	case CreateBufferErrorMaxBufferSize:
		return fmt.Sprintf("buffer %q: size %d exceeds maximum %d",
			label, e.RequestedSize, e.MaxSize)
	case CreateBufferErrorInvalidUsage:
		return fmt.Sprintf("buffer %q: invalid usage class", label)
	case CreateBufferErrorHAL:
		return fmt.Sprintf("buffer %q: native device error: %v", label, e.HALError)
	default:
		return fmt.Sprintf("buffer %q: unknown error", label)
	}
}

// Unwrap returns the underlying native device error, if any.
func (e *CreateBufferError) Unwrap() error {
	return e.HALError
}

// IsCreateBufferError returns true if the error is a CreateBufferError.
func IsCreateBufferError(err error) bool {
	var cbe *CreateBufferError
	return errors.As(err, &cbe)
}

// CreateTextureError represents an error during texture creation.
type CreateTextureError struct {
	Label    string
	HALError error
}

// Error implements the error interface.
func (e *CreateTextureError) Error() string {
	label := e.Label
	if label == "" {
		label = "<unnamed>"
	}
	return fmt.Sprintf("texture %q: native device error: %v", label, e.HALError)
}

// Unwrap returns the underlying native device error.
func (e *CreateTextureError) Unwrap() error {
	return e.HALError
}

// IsCreateTextureError returns true if the error is a CreateTextureError.
func IsCreateTextureError(err error) bool {
	var cte *CreateTextureError
	return errors.As(err, &cte)
}
