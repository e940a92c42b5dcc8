package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_AggregatesAllViolations(t *testing.T) {
	verr := &ValidationError{}
	require.NoError(t, verr.ErrOrNil())

	verr.Add("customerId is required")
	verr.Add("items must not be empty")

	err := verr.ErrOrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"customerId is required", "items must not be empty"}, Violations(err))
	assert.Contains(t, err.Error(), "customerId is required; items must not be empty")
}

func TestViolations_WrappedAndForeignErrors(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("name is required")

	wrapped := fmt.Errorf("create product: %w", verr.ErrOrNil())
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, []string{"name is required"}, Violations(wrapped))

	assert.Nil(t, Violations(ErrNotFound))
}
