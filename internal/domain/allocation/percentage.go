package allocation

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// NormalizeShares recomputes the percentage share of every record from the
// set's total amount and returns a new ordered slice; the input is never
// mutated. Shares are rounded to the nearest integer (half away from zero),
// so the sum over three or more records may drift from 100 by a point or two.
// When the total is zero every share is zero.
//
// Ordering: the Investments record, if present, is first; all other records
// keep their input order.
func NormalizeShares(records []Record) []Record {
	out := make([]Record, 0, len(records))

	// Investments-first, remaining order stable
	for _, r := range records {
		if IsInvestments(r.Category) {
			out = append(out, r)
		}
	}
	for _, r := range records {
		if !IsInvestments(r.Category) {
			out = append(out, r)
		}
	}

	total := decimal.Zero
	for _, r := range out {
		total = total.Add(r.Amount)
	}

	for i := range out {
		if total.IsZero() {
			out[i].Percentage = 0
			continue
		}
		share := out[i].Amount.Div(total).Mul(hundred).Round(0)
		out[i].Percentage = int(share.IntPart())
	}

	return out
}

// TotalAmount sums the amounts of a record set.
func TotalAmount(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
