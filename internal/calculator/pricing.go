// Package calculator holds the pure money computations of the ledger: sale
// line pricing, invoice aggregation, customer balances and sales summaries.
package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// LineTotals are the computed amounts of one sale line
type LineTotals struct {
	Excl      float64 `json:"excl"`
	GSTAmount float64 `json:"gst_amount"`
	Incl      float64 `json:"incl"`
}

// Totals are the aggregated amounts of a sale
type Totals struct {
	TotalGST    float64 `json:"total_gst"`
	TotalAmount float64 `json:"total_amount"`
}

// Round2 rounds half away from zero at 2 decimal places. The value is taken
// at its shortest decimal representation, so 1.005 rounds to 1.01.
func Round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// Coerce maps negative, NaN and infinite inputs to 0
func Coerce(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// ComputeLine computes the tax-inclusive amounts of a sale line.
//
//	excl = round2(quantity * unitPrice)
//	gst  = round2(quantity * unitPrice * rate / 100)
//	incl = round2(excl + gst)
//
// Invalid inputs are coerced to 0.
func ComputeLine(quantity, unitPrice, gstRatePercent float64) LineTotals {
	q, p, r := Coerce(quantity), Coerce(unitPrice), Coerce(gstRatePercent)

	excl := q * p
	gst := Round2(excl * r / 100)
	exclRounded := Round2(excl)

	return LineTotals{
		Excl:      exclRounded,
		GSTAmount: gst,
		Incl:      Round2(exclRounded + gst),
	}
}

// Aggregate sums line amounts. The sum is not re-rounded.
func Aggregate(lines []LineTotals) Totals {
	var totals Totals
	for _, line := range lines {
		totals.TotalGST += line.GSTAmount
		totals.TotalAmount += line.Incl
	}
	return totals
}
