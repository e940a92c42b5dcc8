package apperr

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock marks an order line asking for more than is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidState marks an illegal transition, e.g. cancelling a completed order.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument marks bad construction parameters.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError carries every violation found in a request, not just the first.
type ValidationError struct {
	violations *multierror.Error
}

// Add records a violation.
func (v *ValidationError) Add(msg string) {
	v.violations = multierror.Append(v.violations, errors.New(msg))
}

// Violations returns the recorded messages in the order they were added.
func (v *ValidationError) Violations() []string {
	if v == nil || v.violations == nil {
		return nil
	}
	out := make([]string, 0, len(v.violations.Errors))
	for _, err := range v.violations.Errors {
		out = append(out, err.Error())
	}
	return out
}

// ErrOrNil returns nil when nothing was recorded.
func (v *ValidationError) ErrOrNil() error {
	if v == nil || v.violations == nil || len(v.violations.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(v.Violations(), "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Violations extracts the violation list from err if it is a validation error.
func Violations(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Violations()
	}
	return nil
}
