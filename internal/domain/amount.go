package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amount is a fixed-point decimal used for money and quantities. It wraps
// shopspring/decimal so values round-trip through yaml as plain scalars.
type Amount struct {
	decimal.Decimal
}

func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Amount{d}, nil
}

func AmountFromInt(n int64) Amount {
	return Amount{decimal.NewFromInt(n)}
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d}
}

func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }
func (a Amount) Mul(b Amount) Amount { return Amount{a.Decimal.Mul(b.Decimal)} }

func (a Amount) IsNegative() bool { return a.Decimal.IsNegative() }
func (a Amount) IsZero() bool     { return a.Decimal.IsZero() }

func (a Amount) Equal(b Amount) bool { return a.Decimal.Equal(b.Decimal) }

// Float64 bridges to the renderer's native numeric space. Non-finite
// results are refused.
func (a Amount) Float64() (float64, error) {
	f, _ := a.Decimal.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s", ErrDecimalConversion, a.Decimal.String())
	}
	return f, nil
}

func (a Amount) MarshalYAML() (any, error) {
	return a.Decimal.String(), nil
}

// UnmarshalYAML reads the scalar's literal text so that hand-edited
// files may leave numbers unquoted.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: not a scalar", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, node.Value)
	}
	a.Decimal = d
	return nil
}
