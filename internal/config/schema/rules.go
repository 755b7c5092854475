package schema

import (
	"fmt"
	"os"
	"regexp"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/layer"
)

// Rule is a single predicate over a value. It returns nil when the value is
// acceptable and a *cfgerr.ValidationError describing the violation otherwise.
type Rule func(value any) error

// Predicate reports whether a value is acceptable.
type Predicate func(value any) bool

// PathOptions selects the filesystem checks applied by a path rule.
// Each requested check is applied independently.
type PathOptions struct {
	MustExist  bool
	MustBeFile bool
	MustBeDir  bool
}

// Bound returns a pointer to v for use as a range limit.
func Bound(v float64) *float64 {
	return &v
}

// FromPredicate wraps a boolean predicate into a rule. An empty message
// produces a generic "validation failed" message.
func FromPredicate(pred Predicate, message string) Rule {
	return func(value any) error {
		if pred(value) {
			return nil
		}
		if message == "" {
			return cfgerr.NewValidationError("", value, "rejected by validator")
		}
		return cfgerr.NewValidationError("", value, "%s", message)
	}
}

// Range requires a numeric value within [min, max]. Either bound may be nil.
func Range(min, max *float64) Rule {
	return func(value any) error {
		if !isNumber(value) {
			return cfgerr.NewValidationError("", value, "must be a number, got %s", TypeOf(value))
		}
		f := toFloat64(value)
		if min != nil && f < *min {
			return cfgerr.NewValidationError("", value, "must be >= %v", *min)
		}
		if max != nil && f > *max {
			return cfgerr.NewValidationError("", value, "must be <= %v", *max)
		}
		return nil
	}
}

// Choice requires the value to equal one of choices.
func Choice(choices ...any) Rule {
	allowed := append([]any(nil), choices...)
	return func(value any) error {
		for _, c := range allowed {
			if layer.ValuesEqual(value, c) {
				return nil
			}
		}
		return cfgerr.NewValidationError("", value, "must be one of %v", allowed)
	}
}

// OfType requires the value's type tag to be exactly expected.
func OfType(expected Type) Rule {
	return func(value any) error {
		if actual := TypeOf(value); actual != expected {
			return cfgerr.NewValidationError("", value, "must be of type %s, got %s", expected, actual)
		}
		return nil
	}
}

// Path requires a string path and applies the requested filesystem checks.
func Path(opts PathOptions) Rule {
	return func(value any) error {
		p, ok := value.(string)
		if !ok {
			return cfgerr.NewValidationError("", value, "must be a string path, got %s", TypeOf(value))
		}

		info, err := os.Stat(p)
		exists := err == nil

		if opts.MustExist && !exists {
			return cfgerr.NewValidationError("", value, "path does not exist")
		}
		if opts.MustBeFile && (!exists || !info.Mode().IsRegular()) {
			return cfgerr.NewValidationError("", value, "must be a file")
		}
		if opts.MustBeDir && (!exists || !info.IsDir()) {
			return cfgerr.NewValidationError("", value, "must be a directory")
		}
		return nil
	}
}

// Pattern requires a string matching the regular expression.
func Pattern(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			return cfgerr.NewValidationError("", value, "must be a string, got %s", TypeOf(value))
		}
		if !re.MatchString(s) {
			return cfgerr.NewValidationError("", value, "does not match pattern %s", pattern)
		}
		return nil
	}, nil
}

// All combines rules with AND semantics, stopping at the first failure.
func All(rules ...Rule) Rule {
	return func(value any) error {
		for _, r := range rules {
			if r == nil {
				continue
			}
			if err := r(value); err != nil {
				return err
			}
		}
		return nil
	}
}
