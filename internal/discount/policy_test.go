package discount

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "expected %s, got %s", want, got)
}

func TestPolicies_Compute(t *testing.T) {
	percentage, err := NewPercentage(d("10"))
	require.NoError(t, err)
	fixed, err := NewFixedAmount(d("50"))
	require.NoError(t, err)
	firstOrder, err := NewFirstOrder(d("20"))
	require.NoError(t, err)
	coupon, err := NewCoupon("SAVE10", d("10"), d("500"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		policy   Policy
		subtotal string
		want     string
	}{
		{"none", None(), "1000", "0"},
		{"percentage", percentage, "1000", "100"},
		{"percentage rounds to cents", percentage, "33.33", "3.33"},
		{"fixed under subtotal", fixed, "200", "50"},
		{"fixed capped at subtotal", fixed, "30", "30"},
		{"tiered top", NewTiered(), "1000", "150"},
		{"tiered 500", NewTiered(), "500", "50"},
		{"tiered 200", NewTiered(), "250", "12.5"},
		{"tiered below", NewTiered(), "199.99", "0"},
		{"first order", firstOrder, "100", "20"},
		{"black friday", BlackFriday(), "200", "60"},
		{"coupon below minimum", coupon, "300", "0"},
		{"coupon at minimum", coupon, "500", "50"},
		{"coupon above minimum", coupon, "600", "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, tt.policy.Compute(d(tt.subtotal)))
		})
	}
}

func TestPolicies_DifferOnSameSubtotal(t *testing.T) {
	percentage, err := NewPercentage(d("10"))
	require.NoError(t, err)

	a := percentage.Compute(d("1000"))
	b := NewTiered().Compute(d("1000"))
	assert.False(t, a.Equal(b))
}

func TestConstructors_RejectBadParameters(t *testing.T) {
	_, err := NewPercentage(d("101"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewPercentage(d("-1"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewFixedAmount(d("-0.01"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewFirstOrder(d("150"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewCoupon(" ", d("10"), decimal.Zero)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewCoupon("X", d("10"), d("-5"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = NewPercentage(d("0"))
	assert.NoError(t, err)
	_, err = NewPercentage(d("100"))
	assert.NoError(t, err)
}

func TestFromSelector(t *testing.T) {
	policy, err := FromSelector(models.DiscountSelector{Type: "Percentage", Percent: ptr(d("15"))})
	require.NoError(t, err)
	assert.Equal(t, "15% off", policy.Describe())

	policy, err = FromSelector(models.DiscountSelector{Type: "first-order"})
	require.NoError(t, err)
	assertAmount(t, "20", policy.Compute(d("100")))

	policy, err = FromSelector(models.DiscountSelector{Type: "first-order", Percent: ptr(d("0"))})
	require.NoError(t, err)
	assertAmount(t, "0", policy.Compute(d("100")))
	assert.Equal(t, "First order: 0% off", policy.Describe())

	policy, err = FromSelector(models.DiscountSelector{Type: "coupon", Code: "WELCOME", Percent: ptr(d("10")), MinOrder: d("500")})
	require.NoError(t, err)
	assertAmount(t, "60", policy.Compute(d("600")))

	policy, err = FromSelector(models.DiscountSelector{})
	require.NoError(t, err)
	assert.Equal(t, "No discount", policy.Describe())

	_, err = FromSelector(models.DiscountSelector{Type: "loyalty"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	_, err = FromSelector(models.DiscountSelector{Type: "fixed", Amount: d("-1")})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }
