/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - Malformed input rejected before computation
  2. Computation faults - A single record/shift that cannot be measured;
     aggregators isolate these per day and continue
  3. Store errors - Lookups and uniqueness violations

  Missing data (no schedule, no wage history) is NOT an error. It resolves
  to a fallback value with a reason tag on the result.

USAGE:
    if errors.Is(err, generic.ErrInvalidInput) {
        var verrs generic.ValidationErrors
        errors.As(err, &verrs)
        ...
    }

SEE ALSO:
  - labor/validate.go: Builds ValidationErrors
  - labor/duration.go: Returns ErrMalformedShift
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrNotFound is returned when any other referenced row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidInput is the root of every field-level validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedShift is returned when a shift or record cannot be measured
	// (negative break, spill-over outside 0..360 minutes, half-open clock pair).
	ErrMalformedShift = errors.New("malformed shift")

	// ErrDuplicateRecord is returned when a uniqueness constraint is violated
	// (one work record per worker per date, one schedule per weekday).
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrHolidaySource is returned when the holiday calendar cannot be read.
	ErrHolidaySource = errors.New("holiday source unavailable")

	// ErrStoreRequired is returned when an operation requires a store that was not configured.
	ErrStoreRequired = errors.New("operation requires a configured store")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError is a single field-level rejection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationErrors collects every field failure found in one input.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// Add appends a failure for field.
func (v *ValidationErrors) Add(field, reason string) {
	*v = append(*v, ValidationError{Field: field, Reason: reason})
}

// Addf appends a formatted failure for field.
func (v *ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields returns the failures keyed by field name. When a field failed more
// than once the reasons are joined.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if prev, ok := out[e.Field]; ok {
			out[e.Field] = prev + "; " + e.Reason
			continue
		}
		out[e.Field] = e.Reason
	}
	return out
}

// FieldNames returns the failing field names, sorted.
func (v ValidationErrors) FieldNames() []string {
	names := make([]string, 0, len(v))
	for f := range v.Fields() {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ShiftError describes why a specific shift could not be measured.
type ShiftError struct {
	Date   TimePoint
	Reason string
}

func (e *ShiftError) Error() string {
	if e.Date.IsZero() {
		return "malformed shift: " + e.Reason
	}
	return fmt.Sprintf("malformed shift on %s: %s", e.Date, e.Reason)
}

func (e *ShiftError) Unwrap() error {
	return ErrMalformedShift
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRecord)
}
