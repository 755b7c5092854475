// Package schema provides declarative validation rules for configuration keys.
//
// A Schema maps dotted keys to an ordered list of rules. Every helper
// appends to the list; nothing ever replaces a previously declared rule.
// Validation runs the rules in declaration order and reports the first
// failure as a *cfgerr.ValidationError.
package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/layer"
)

// Schema is a keyed collection of validation rules.
type Schema struct {
	rules map[string][]Rule
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{rules: make(map[string][]Rule)}
}

// AddRule appends a rule for key.
func (s *Schema) AddRule(key string, rule Rule) *Schema {
	if rule == nil {
		return s
	}
	s.rules[key] = append(s.rules[key], rule)
	return s
}

// AddValidator appends a predicate rule for key. When message is empty the
// failure reads "validation failed for <key>: <value>".
func (s *Schema) AddValidator(key string, pred Predicate, message string) *Schema {
	return s.AddRule(key, func(value any) error {
		if pred(value) {
			return nil
		}
		if message == "" {
			return cfgerr.NewValidationError(key, value, "validation failed for %s: %v", key, value)
		}
		return cfgerr.NewValidationError(key, value, "%s", message)
	})
}

// AddRangeConstraint appends a numeric range rule. Either bound may be nil.
func (s *Schema) AddRangeConstraint(key string, min, max *float64) *Schema {
	return s.AddRule(key, Range(min, max))
}

// AddChoiceConstraint appends a membership rule.
func (s *Schema) AddChoiceConstraint(key string, choices ...any) *Schema {
	return s.AddRule(key, Choice(choices...))
}

// AddTypeConstraint appends an exact-type rule.
func (s *Schema) AddTypeConstraint(key string, expected Type) *Schema {
	return s.AddRule(key, OfType(expected))
}

// AddPathConstraint appends a filesystem path rule.
func (s *Schema) AddPathConstraint(key string, opts PathOptions) *Schema {
	return s.AddRule(key, Path(opts))
}

// AddPatternConstraint appends a regular expression rule. It fails only when
// the pattern does not compile.
func (s *Schema) AddPatternConstraint(key, pattern string) error {
	rule, err := Pattern(pattern)
	if err != nil {
		return fmt.Errorf("schema %s: %w", key, err)
	}
	s.AddRule(key, rule)
	return nil
}

// Validate runs every rule declared for key against value in declaration
// order. Keys without rules accept any value.
func (s *Schema) Validate(key string, value any) error {
	for _, rule := range s.rules[key] {
		if err := rule(value); err != nil {
			return cfgerr.AsValidationError(key, value, err)
		}
	}
	return nil
}

// ValidateAll validates every declared key present in doc. Keys are looked
// up as nested dotted paths first, then as literal top-level keys. Absent
// keys are skipped. All failures are joined.
func (s *Schema) ValidateAll(doc map[string]any) error {
	var errs []error
	for _, key := range s.Keys() {
		value, ok := layer.GetByPath(doc, key)
		if !ok {
			value, ok = doc[key]
		}
		if !ok {
			continue
		}
		if err := s.Validate(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rules returns the rules declared for key, or nil.
func (s *Schema) Rules(key string) []Rule {
	rules := s.rules[key]
	if len(rules) == 0 {
		return nil
	}
	return append([]Rule(nil), rules...)
}

// Has reports whether any rule is declared for key.
func (s *Schema) Has(key string) bool {
	return len(s.rules[key]) > 0
}

// RuleCount returns the number of rules declared for key.
func (s *Schema) RuleCount(key string) int {
	return len(s.rules[key])
}

// Keys returns every key with declared rules, sorted.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.rules))
	for k := range s.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
