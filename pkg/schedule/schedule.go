// Package schedule is the amortization and status-derivation engine.
// Every function is pure: given a loan's terms and its recorded payments
// it reconstructs the repayment schedule, per-installment overdue state
// and loan-level aggregates, with no storage access and no side effects.
package schedule

import (
	"time"

	"github.com/lendbook/lendbook/pkg/models"
	"github.com/shopspring/decimal"
)

// IntervalDays resolves the loan's cadence to a day count: the explicit
// interval string wins, the coarse frequency's default interval is the
// fallback.
func IntervalDays(loan models.Loan) int {
	interval := loan.PaymentInterval
	if interval == "" {
		interval = IntervalForFrequency(loan.PaymentFrequency)
	}
	return ParseIntervalToDays(interval)
}

// Generate produces the ordered installment schedule for a loan. Each
// installment carries an independently rounded equal share of principal,
// interest and total; the first due date is one interval after the start
// date, never the start date itself. A loan with a non-positive term
// length yields an empty schedule (creation-time validation rejects such
// loans; this guard is for malformed persisted data). A zero start date
// is substituted with today so the schedule is always constructible.
func Generate(loan models.Loan) []models.ScheduleItem {
	if loan.TermLength <= 0 {
		return nil
	}

	intervalDays := IntervalDays(loan)
	totalAmount, totalInterest := ComputeAmount(loan.Principal, loan.FlatInterestRate)

	terms := decimal.NewFromInt(int64(loan.TermLength))
	paymentAmount := totalAmount.Div(terms).Round(2)
	interestPerPayment := totalInterest.Div(terms).Round(2)
	principalPerPayment := loan.Principal.Div(terms).Round(2)

	start := loan.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	due := truncateToDay(start)

	schedule := make([]models.ScheduleItem, 0, loan.TermLength)
	for i := 1; i <= loan.TermLength; i++ {
		due = due.AddDate(0, 0, intervalDays)

		balance := loan.Principal.Sub(principalPerPayment.Mul(decimal.NewFromInt(int64(i))))
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		schedule = append(schedule, models.ScheduleItem{
			PaymentNumber: i,
			DueDate:       due,
			Principal:     principalPerPayment,
			Interest:      interestPerPayment,
			TotalAmount:   paymentAmount,
			Balance:       balance.Round(2),
		})
	}

	return schedule
}

// truncateToDay strips the time-of-day so due date comparisons work at
// calendar-day granularity.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
