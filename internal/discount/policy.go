// Package discount holds the pricing policies an order can be created under.
// Every policy is a pure function of the order subtotal.
package discount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

// DefaultFirstOrderPercent applies when a first-order selector carries no percentage.
const DefaultFirstOrderPercent = 20

var hundred = decimal.NewFromInt(100)

type Policy interface {
	Compute(subtotal decimal.Decimal) decimal.Decimal
	Describe() string
}

type Kind string

const (
	KindNone        Kind = "none"
	KindPercentage  Kind = "percentage"
	KindFixed       Kind = "fixed"
	KindTiered      Kind = "tiered"
	KindFirstOrder  Kind = "first-order"
	KindBlackFriday Kind = "black-friday"
	KindCoupon      Kind = "coupon"
)

// ParseKind maps a wire tag onto one of the known kinds.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindNone, KindPercentage, KindFixed, KindTiered, KindFirstOrder, KindBlackFriday, KindCoupon:
		return k, nil
	case "":
		return KindNone, nil
	default:
		return "", fmt.Errorf("unknown discount type %q: %w", s, apperr.ErrInvalidArgument)
	}
}

// FromSelector builds the policy a request asked for.
func FromSelector(sel models.DiscountSelector) (Policy, error) {
	kind, err := ParseKind(sel.Type)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPercentage:
		return NewPercentage(sel.PercentOr(decimal.Zero))
	case KindFixed:
		return NewFixedAmount(sel.Amount)
	case KindTiered:
		return NewTiered(), nil
	case KindFirstOrder:
		return NewFirstOrder(sel.PercentOr(decimal.NewFromInt(DefaultFirstOrderPercent)))
	case KindBlackFriday:
		return BlackFriday(), nil
	case KindCoupon:
		return NewCoupon(sel.Code, sel.PercentOr(decimal.Zero), sel.MinOrder)
	default:
		return None(), nil
	}
}

func percentOf(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

func checkPercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("percentage %s outside [0,100]: %w", p, apperr.ErrInvalidArgument)
	}
	return nil
}

type none struct{}

func None() Policy { return none{} }

func (none) Compute(decimal.Decimal) decimal.Decimal { return decimal.Zero }
func (none) Describe() string                        { return "No discount" }

type Percentage struct {
	percent decimal.Decimal
}

func NewPercentage(percent decimal.Decimal) (*Percentage, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	return &Percentage{percent: percent}, nil
}

func (p *Percentage) Compute(subtotal decimal.Decimal) decimal.Decimal {
	return percentOf(subtotal, p.percent)
}

func (p *Percentage) Describe() string {
	return fmt.Sprintf("%s%% off", p.percent)
}

type FixedAmount struct {
	amount decimal.Decimal
}

func NewFixedAmount(amount decimal.Decimal) (*FixedAmount, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("fixed discount %s is negative: %w", amount, apperr.ErrInvalidArgument)
	}
	return &FixedAmount{amount: amount}, nil
}

// Compute never discounts more than the subtotal.
func (f *FixedAmount) Compute(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Min(f.amount, subtotal)
}

func (f *FixedAmount) Describe() string {
	return fmt.Sprintf("%s off", f.amount.StringFixed(2))
}

type tier struct {
	threshold decimal.Decimal
	percent   decimal.Decimal
}

// Tiered picks the first tier, highest threshold first, that the subtotal reaches.
type Tiered struct {
	tiers []tier
}

func NewTiered() *Tiered {
	return &Tiered{tiers: []tier{
		{threshold: decimal.NewFromInt(1000), percent: decimal.NewFromInt(15)},
		{threshold: decimal.NewFromInt(500), percent: decimal.NewFromInt(10)},
		{threshold: decimal.NewFromInt(200), percent: decimal.NewFromInt(5)},
	}}
}

func (t *Tiered) Compute(subtotal decimal.Decimal) decimal.Decimal {
	for _, tr := range t.tiers {
		if subtotal.GreaterThanOrEqual(tr.threshold) {
			return percentOf(subtotal, tr.percent)
		}
	}
	return decimal.Zero
}

func (t *Tiered) Describe() string {
	return "Tiered: 15% from 1000, 10% from 500, 5% from 200"
}

// FirstOrder does not check that the order really is the customer's first.
type FirstOrder struct {
	percent decimal.Decimal
}

func NewFirstOrder(percent decimal.Decimal) (*FirstOrder, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	return &FirstOrder{percent: percent}, nil
}

func (f *FirstOrder) Compute(subtotal decimal.Decimal) decimal.Decimal {
	return percentOf(subtotal, f.percent)
}

func (f *FirstOrder) Describe() string {
	return fmt.Sprintf("First order: %s%% off", f.percent)
}

type blackFriday struct{}

func BlackFriday() Policy { return blackFriday{} }

func (blackFriday) Compute(subtotal decimal.Decimal) decimal.Decimal {
	return percentOf(subtotal, decimal.NewFromInt(30))
}

func (blackFriday) Describe() string { return "Black Friday: 30% off" }

type Coupon struct {
	code     string
	percent  decimal.Decimal
	minOrder decimal.Decimal
}

func NewCoupon(code string, percent, minOrder decimal.Decimal) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("coupon code is required: %w", apperr.ErrInvalidArgument)
	}
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	if minOrder.IsNegative() {
		return nil, fmt.Errorf("coupon minimum order %s is negative: %w", minOrder, apperr.ErrInvalidArgument)
	}
	return &Coupon{code: code, percent: percent, minOrder: minOrder}, nil
}

func (c *Coupon) Compute(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(c.minOrder) {
		return decimal.Zero
	}
	return percentOf(subtotal, c.percent)
}

func (c *Coupon) Describe() string {
	if c.minOrder.IsPositive() {
		return fmt.Sprintf("Coupon %s: %s%% off orders from %s", c.code, c.percent, c.minOrder.StringFixed(2))
	}
	return fmt.Sprintf("Coupon %s: %s%% off", c.code, c.percent)
}
