package config

import (
	"errors"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/registry"
)

// Sentinel errors shared by every configuration package.
var (
	// ErrConfig is the root of all configuration errors.
	ErrConfig = cfgerr.ErrConfig

	// ErrValidation indicates a value was rejected by a rule.
	ErrValidation = cfgerr.ErrValidation

	// ErrUnsupportedFormat indicates a document path without a .json extension.
	ErrUnsupportedFormat = cfgerr.ErrUnsupportedFormat

	// ErrInvalidDocument indicates malformed JSON or a non-object top level.
	ErrInvalidDocument = cfgerr.ErrInvalidDocument

	// ErrInvalidPath indicates a dotted key with empty segments.
	ErrInvalidPath = cfgerr.ErrInvalidPath

	// ErrNoConfigFile is returned when no document path is known.
	ErrNoConfigFile = errors.New("no config file specified")
)

// ConfigError wraps a load, save, import or export failure.
type ConfigError = cfgerr.ConfigError

// ValidationError reports a rejected value.
type ValidationError = cfgerr.ValidationError

// TypeError reports a typed getter applied to a value of another kind.
type TypeError = registry.TypeError

// IsValidationError reports whether err is or wraps a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTypeError reports whether err is or wraps a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}
