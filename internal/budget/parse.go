package budget

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNonNegativeOrDefault reads a decimal amount leniently: blank,
// malformed, negative or out-of-range input yields def instead of an error.
// Accepted amounts are rounded to cents.
func ParseNonNegativeOrDefault(input string, def decimal.Decimal) decimal.Decimal {
	s := strings.TrimSpace(input)
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return def
	}
	d = Cents(d)
	if d.GreaterThan(MaxAmount) {
		return def
	}
	return d
}

// LenientAmount decodes a JSON number or numeric string and never fails:
// anything else decodes as zero.
type LenientAmount struct {
	Value decimal.Decimal
}

func (a *LenientAmount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Value = decimal.Zero
			return nil
		}
		raw = s
	}
	if raw == "null" {
		raw = ""
	}
	a.Value = ParseNonNegativeOrDefault(raw, decimal.Zero)
	return nil
}

func (a LenientAmount) MarshalJSON() ([]byte, error) {
	return a.Value.MarshalJSON()
}
