package schedule

import (
	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	daysPerMonth = decimal.NewFromInt(30)
)

// TotalRate converts a nominal per-period rate (entered as a
// monthly-equivalent percentage) into the total flat rate over the whole
// loan. The duration in months is totalDays/30 and may be fractional: a
// 15-day interval over 4 terms is 2.0 months. A zero rate stays zero.
func TotalRate(perPeriodRate decimal.Decimal, interval string, termLength int) decimal.Decimal {
	if perPeriodRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	totalDays := decimal.NewFromInt(int64(ParseIntervalToDays(interval) * termLength))
	durationMonths := totalDays.Div(daysPerMonth)

	return perPeriodRate.Mul(durationMonths).Round(2)
}

// ComputeAmount derives the total repayable amount and total interest
// from the principal and the total flat rate percentage. Both results
// are rounded to 2 places independently so neither compounds the other's
// rounding error. A non-positive principal yields zeros.
func ComputeAmount(principal, totalRate decimal.Decimal) (totalAmount, totalInterest decimal.Decimal) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}

	interest := principal.Mul(totalRate).Div(hundred)
	return principal.Add(interest).Round(2), interest.Round(2)
}
