package kasir

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a proportion such as a tax rate, 0.11 for 11%.
type Rate struct {
	value decimal.Decimal
}

// StandardTaxRate is the value added tax applied when none is configured.
var StandardTaxRate = R(0.11)

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses "0.11" or "11%".
func ParseRate(s string) (Rate, error) {
	percent := false
	if n := len(s); n > 0 && s[n-1] == '%' {
		s, percent = s[:n-1], true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, err
	}
	if percent {
		d = d.Shift(-2)
	}
	return Rate{value: d}, nil
}

// Valid reports whether the rate is within [0, 1].
func (r Rate) Valid() bool {
	return !r.value.IsNegative() && r.value.LessThanOrEqual(decimal.NewFromInt(1))
}

func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) Equal(s Rate) bool        { return r.value.Equal(s.value) }
func (r Rate) Decimal() decimal.Decimal { return r.value }

func (r Rate) String() string {
	return fmt.Sprintf("%s%%", r.value.Shift(2).String())
}

func (r Rate) MarshalJSON() ([]byte, error) { return r.value.MarshalJSON() }

func (r *Rate) UnmarshalJSON(data []byte) error { return r.value.UnmarshalJSON(data) }
