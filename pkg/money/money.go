// Package money implements a fixed-point monetary amount so that round-up
// accounting never drifts the way binary floating point would.
//
// Amounts are stored as integer minor units (cents), rendered by String in
// a two-decimal-digit form, and encoded in JSON as the shortest exact
// decimal number.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a signed monetary amount in minor units (1 = one cent).
type Cents int64

// Zero is the additive identity.
const Zero Cents = 0

// FromFloat converts a float64 amount (as decoded from aggregator/signer
// JSON) into Cents, rounding to the nearest cent. Returns an error if the
// input is not finite.
func FromFloat(amount float64) (Cents, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("money: amount %v is not finite", amount)
	}
	scaled := amount * 100
	return Cents(math.Round(scaled)), nil
}

// ToFloat returns the amount as a float64 in major units, for JSON encoding
// paths that are not part of a hashed payload (canonical JSON hashing uses
// String/Decimal form instead, see pkg/chain/canonical.go).
func (c Cents) ToFloat() float64 {
	return float64(c) / 100
}

// String renders the amount with exactly two fractional digits, e.g. "4.56"
// or "-1.20".
func (c Cents) String() string {
	neg := c < 0
	v := int64(c)
	if neg {
		v = -v
	}
	whole := v / 100
	frac := v % 100
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}

// ParseDecimal parses a decimal string such as "4.56" or "-1.2" into Cents.
func ParseDecimal(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty decimal string")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid decimal %q: %w", s, err)
	}
	return FromFloat(f)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (c Cents) IsPositive() bool { return c > 0 }

// Sub returns c - other.
func (c Cents) Sub(other Cents) Cents { return c - other }

// Add returns c + other.
func (c Cents) Add(other Cents) Cents { return c + other }

// CeilToWhole returns the smallest multiple of one whole unit (100 cents)
// that is >= c.
func (c Cents) CeilToWhole() Cents {
	if c <= 0 {
		return 0
	}
	rem := c % 100
	if rem == 0 {
		return c
	}
	return c + (100 - rem)
}

// HasFraction reports whether c is not an exact multiple of one whole unit.
func (c Cents) HasFraction() bool {
	return c%100 != 0
}

// MarshalJSON renders c as a bare JSON number in its shortest exact decimal
// form (e.g. 4.56, -1.2, 1), never as a quoted string. This is what makes
// chain payloads satisfy "numbers encoded in their shortest exact decimal
// form": the digit sequence is fixed by construction, not by float
// formatting.
func (c Cents) MarshalJSON() ([]byte, error) {
	s := strings.TrimRight(c.String(), "0")
	s = strings.TrimSuffix(s, ".")
	return []byte(s), nil
}

// UnmarshalJSON accepts either a bare JSON number or a quoted decimal string,
// since upstream collaborators (the aggregator, the external signer) are not
// guaranteed to use the same convention.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	v, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
