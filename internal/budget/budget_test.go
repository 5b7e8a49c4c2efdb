package budget_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/budget"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSplitBudget(t *testing.T) {
	tests := []struct {
		name        string
		total       decimal.Decimal
		allocated   decimal.Decimal
		wantAlloc   string
		wantSponsor string
	}{
		{"partial allocation", d(10000), d(6000), "6000", "4000"},
		{"full allocation", d(10000), d(10000), "10000", "0"},
		{"nothing allocated", d(10000), d(0), "0", "10000"},
		{"over allocation clamps", d(10000), d(12000), "12000", "0"},
		{"negative allocation is zero", d(500), d(-100), "0", "500"},
		{"fractional amounts", decimal.RequireFromString("100.50"), decimal.RequireFromString("40.25"), "40.25", "60.25"},
		{"sub-cent allocation rounds", d(10000), decimal.RequireFromString("6000.005"), "6000.01", "3999.99"},
		{"sub-cent allocation rounds down", d(10000), decimal.RequireFromString("6000.004"), "6000", "4000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := budget.SplitBudget(tt.total, tt.allocated)
			assert.Equal(t, tt.wantAlloc, s.AllocatedBudget.String())
			assert.Equal(t, tt.wantSponsor, s.SponsorRequirement.String())
		})
	}
}

func TestDecrementSponsorRequirement(t *testing.T) {
	assert.Equal(t, "2", budget.DecrementSponsorRequirement(budget.DecrementSponsorRequirement(d(10), d(4)), d(4)).String())
	assert.Equal(t, "0", budget.DecrementSponsorRequirement(d(4000), d(4000)).String())
	assert.Equal(t, "0", budget.DecrementSponsorRequirement(d(4000), d(5000)).String())
	assert.Equal(t, "4000", budget.DecrementSponsorRequirement(d(4000), d(-10)).String())
	assert.Equal(t, "3999.99", budget.DecrementSponsorRequirement(d(4000), decimal.RequireFromString("0.005")).String())
}

func TestParseNonNegativeOrDefault(t *testing.T) {
	def := d(7)
	cases := map[string]string{
		"":         "7",
		"   ":      "7",
		"abc":      "7",
		"NaN":      "7",
		"Infinity": "7",
		"-5":       "7",
		"0":        "0",
		"6000":     "6000",
		" 12.5 ":   "12.5",
		"1e3":      "1000",
		"6000.005": "6000.01",
		"0.004":    "0",
		"1e20":     "7",
	}
	for in, want := range cases {
		assert.Equal(t, want, budget.ParseNonNegativeOrDefault(in, def).String(), "input %q", in)
	}
}

func TestLenientAmountUnmarshal(t *testing.T) {
	cases := map[string]string{
		`{"amount": 6000}`:     "6000",
		`{"amount": "6000"}`:   "6000",
		`{"amount": ""}`:       "0",
		`{"amount": null}`:     "0",
		`{"amount": "oops"}`:   "0",
		`{"amount": -20}`:      "0",
		`{"amount": true}`:     "0",
		`{"amount": {"a": 1}}`: "0",
		`{}`:                   "0",
		`{"amount": 6000.005}`: "6000.01",
		`{"amount": 1e20}`:     "0",
	}
	for in, want := range cases {
		var body struct {
			Amount budget.LenientAmount `json:"amount"`
		}
		require.NoError(t, json.Unmarshal([]byte(in), &body), in)
		assert.Equal(t, want, body.Amount.Value.String(), in)
	}
}

func TestCents(t *testing.T) {
	assert.True(t, budget.HasCents(decimal.RequireFromString("10.50")))
	assert.True(t, budget.HasCents(decimal.RequireFromString("10.500")))
	assert.False(t, budget.HasCents(decimal.RequireFromString("10.505")))
	assert.Equal(t, "10.51", budget.Cents(decimal.RequireFromString("10.505")).String())
	assert.Equal(t, "999999999999.99", budget.MaxAmount.StringFixed(budget.CentPlaces))
}
