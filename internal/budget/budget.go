// Package budget splits a requested event budget between OCA funding and
// sponsorship, and tracks the sponsorship still outstanding.
//
// Everything here is pure and safe for concurrent use.
package budget

import "github.com/shopspring/decimal"

// CentPlaces is the number of decimal places amounts are kept at. It matches
// the NUMERIC(14, 2) money columns.
const CentPlaces = 2

// MaxAmount is the largest amount a NUMERIC(14, 2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Cents rounds d half away from zero to whole cents.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// HasCents reports whether d is already on the cent grid.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(Cents(d))
}

// Split is a requested budget divided between OCA and sponsors.
type Split struct {
	AllocatedBudget    decimal.Decimal
	SponsorRequirement decimal.Decimal
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SplitBudget allocates allocated out of total and leaves the rest to sponsors.
// Both inputs are rounded to cents first, so the two parts always add up to
// the stored total. A negative allocation counts as zero. Allocating more than
// total is not an error: the sponsor requirement bottoms out at zero.
func SplitBudget(total, allocated decimal.Decimal) Split {
	total = Cents(total)
	allocated = NonNegative(Cents(allocated))
	return Split{
		AllocatedBudget:    allocated,
		SponsorRequirement: decimal.Max(decimal.Zero, total.Sub(allocated)),
	}
}

// DecrementSponsorRequirement subtracts an approved contribution from the
// outstanding requirement, never going below zero.
func DecrementSponsorRequirement(current, approved decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, Cents(current).Sub(NonNegative(Cents(approved))))
}
