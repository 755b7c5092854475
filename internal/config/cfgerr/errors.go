// Package cfgerr defines the error taxonomy shared by the configuration packages.
//
// Every error produced by the engine matches ErrConfig with errors.Is.
// Validation failures additionally match ErrValidation.
package cfgerr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is the base of every configuration error.
	ErrConfig = errors.New("config error")

	// ErrValidation indicates a value failed a declared rule.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFormat indicates a document path with an extension other than .json.
	ErrUnsupportedFormat = errors.New("unsupported config file format")

	// ErrInvalidDocument indicates a document that is not a JSON object.
	ErrInvalidDocument = errors.New("invalid config document")

	// ErrInvalidPath indicates an empty or malformed dotted key.
	ErrInvalidPath = errors.New("invalid setting path")
)

// ConfigError describes a failed I/O, serialization or format operation.
type ConfigError struct {
	// Op is the operation that failed ("load", "save", "import", ...).
	Op string
	// Path is the document path involved, if any.
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("config: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports ConfigError as an ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError wraps err as a ConfigError.
func NewConfigError(op, path string, err error) *ConfigError {
	return &ConfigError{Op: op, Path: path, Err: err}
}

// ValidationError describes a value that violated a rule.
type ValidationError struct {
	// Key is the dotted key being validated.
	Key string
	// Value is the offending value.
	Value any
	// Message names the violated constraint.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("validation failed (value: %v): %s", e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed for %s (value: %v): %s", e.Key, e.Value, e.Message)
}

// Is reports ValidationError as both ErrValidation and ErrConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrConfig
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(key string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Key:     key,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsValidationError returns err as a ValidationError carrying key. Errors that
// are already ValidationErrors keep their message and gain the key if they had
// none; anything else is wrapped with its text as the message.
func AsValidationError(key string, value any, err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Key != "" {
			return ve
		}
		return &ValidationError{Key: key, Value: ve.Value, Message: ve.Message}
	}
	return &ValidationError{Key: key, Value: value, Message: err.Error()}
}
