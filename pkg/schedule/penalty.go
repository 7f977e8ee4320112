package schedule

import (
	"github.com/shopspring/decimal"
)

// Penalty computes the surcharge accrued by one overdue installment:
// a linear daily charge with no compounding and no cap. A non-positive
// rate or day count yields zero.
func Penalty(penaltyRate decimal.Decimal, daysOverdue int) decimal.Decimal {
	if penaltyRate.LessThanOrEqual(decimal.Zero) || daysOverdue <= 0 {
		return decimal.Zero
	}
	return penaltyRate.Mul(decimal.NewFromInt(int64(daysOverdue))).Round(2)
}
