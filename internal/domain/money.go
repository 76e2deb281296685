package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor currency units (paise for INR). Processor
// amounts use the same unit, so no conversion happens at the payment boundary.
type Money int64

// Rupees builds a Money value from a whole major-unit amount.
func Rupees(major int64) Money {
	return Money(major * 100)
}

// Times multiplies a unit price by a quantity. ok is false when the
// product does not fit in an int64.
func (m Money) Times(quantity int) (total Money, ok bool) {
	if m == 0 || quantity == 0 {
		return 0, true
	}
	q := int64(quantity)
	if int64(m) > math.MaxInt64/q || int64(m) < math.MinInt64/q {
		return 0, false
	}
	return m * Money(q), true
}

// MinorUnits returns the raw amount in minor units.
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// String renders the amount with two fractional digits, e.g. "150.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a decimal JSON number in major units.
func (m *Money) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: money: %v", ErrInvalidFormat, err)
	}
	*m = Money(math.Round(f * 100))
	return nil
}
