package validation

import (
	"errors"
	"fmt"
	"math"
)

// ErrPrerequisite is returned when a computation is requested before its inputs exist,
// for example pricing a project that has no lines or no financing plan.
var ErrPrerequisite = errors.New("prerequisite not satisfied")

// ConfigError reports an input that makes a computation undefined.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ConfigError for field.
func Invalid(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

// Missing wraps ErrPrerequisite with what is missing.
func Missing(what string) error {
	return fmt.Errorf("%w: %s", ErrPrerequisite, what)
}

// Field returns the offending field of a ConfigError anywhere in err's chain.
func Field(err error) (string, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Field, true
	}
	return "", false
}

// NonNegative checks v >= 0 and rejects NaN.
func NonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return Invalid(field, "must be greater than or equal to 0")
	}
	return nil
}

// Positive checks v > 0 and rejects NaN.
func Positive(field string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return Invalid(field, "must be greater than 0")
	}
	return nil
}

// OpenUnit checks 0 < v < 1.
func OpenUnit(field string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return Invalid(field, "must be between 0 and 1 (exclusive)")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
