/*
errors.go - Centralized error types for the generic engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Rule table errors - Malformed tables caught at construction
  2. Validation errors - Field-level input problems, returned as data
  3. Store errors - Reference data lookups and persistence failures

LOOKUP MISSES:
  A missing postcode or course is not an error for the evaluator. Stores
  return ErrCourseNotFound so HTTP adapters can map it to 404, while the
  postcode resolver reports a miss with a boolean.

USAGE:
    if errors.Is(err, generic.ErrCourseNotFound) {
        writeError(w, http.StatusNotFound, "Course not found", err)
    }

SEE ALSO:
  - rule.go: Returns rule table errors
  - store.go: Uses store errors
  - funding/validation.go: Produces FieldError lists
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyRuleTable is returned when a table is built with no rules.
	ErrEmptyRuleTable = errors.New("rule table has no rules")

	// ErrDuplicateStream is returned when two rules share a stream id.
	ErrDuplicateStream = errors.New("duplicate stream id")

	// ErrNilPredicate is returned when a rule has no predicate.
	ErrNilPredicate = errors.New("rule has no predicate")

	// ErrInvalidRule is returned for any other malformed rule.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrUnknownStream is returned when a stream id is not registered.
	ErrUnknownStream = errors.New("unknown funding stream")

	// ErrCourseNotFound is returned when a learning aim reference has no course.
	ErrCourseNotFound = errors.New("course not found")

	// ErrInvalidConfig is returned when threshold configuration is inconsistent.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RuleError names the stream whose rule could not be accepted.
type RuleError struct {
	Stream StreamID
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Stream, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// FieldError is one field-level validation problem. It is data, not a panic.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Fields returns the field names in report order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, len(v))
	for i, fe := range v {
		out[i] = fe.Field
	}
	return out
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnknownStream) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound)
}
