package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units (centavos).
type Money int64

// ErrNotFinite is returned when a value cannot be coerced into a finite amount.
var ErrNotFinite = errors.New("money: value is not a finite number")

var (
	hundred  = decimal.New(100, 0)
	maxCents = decimal.New(math.MaxInt64, 0)
)

// fromCents rejects amounts outside the int64 range instead of wrapping.
func fromCents(cents decimal.Decimal) (Money, error) {
	cents = cents.Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrNotFinite
	}
	return Money(cents.IntPart()), nil
}

// FromUnits converts a decimal currency amount (e.g. 2.6) into minor units, rounding half away from zero.
func FromUnits(units float64) (Money, error) {
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return 0, ErrNotFinite
	}
	return fromCents(decimal.NewFromFloat(units).Mul(hundred))
}

// MustUnits is FromUnits for literals known to be finite.
func MustUnits(units float64) Money {
	m, err := FromUnits(units)
	if err != nil {
		panic(err)
	}
	return m
}

// Parse converts a textual decimal amount such as "6", "32.90" or "2,6" into minor units.
func Parse(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("parse %q: %w", raw, ErrNotFinite)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, ErrNotFinite)
	}
	m, err := fromCents(d.Mul(hundred))
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return m, nil
}

// Units returns the amount in currency units.
func (m Money) Units() float64 {
	f, _ := decimal.New(int64(m), -2).Float64()
	return f
}

// Mul multiplies the amount by an integer quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// String renders the amount with two decimals and a dot separator.
func (m Money) String() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(m), -2).String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string in currency units.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FormatBRL renders the amount the way pt-BR formats Brazilian reais, e.g. "R$ 1.234,50".
func FormatBRL(m Money) string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	reais := strconv.FormatInt(v/100, 10)
	cents := v % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, groupThousands(reais), cents)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
