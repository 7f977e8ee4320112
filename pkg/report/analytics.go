package report

import (
	"time"

	"github.com/lendbook/lendbook/pkg/models"
	"github.com/lendbook/lendbook/pkg/schedule"
	"github.com/shopspring/decimal"
)

// MonthMetrics is one calendar month's cash flow across the whole book:
// money collected, capital released as new loans, what the schedules
// said should have come in, and how those compare.
type MonthMetrics struct {
	Month           string          `json:"month"` // "2006-01"
	TotalCollected  decimal.Decimal `json:"total_collected"`
	PaymentsCount   int             `json:"payments_count"`
	CapitalReleased decimal.Decimal `json:"capital_released"`
	NewLoansCount   int             `json:"new_loans_count"`
	ExpectedDue     decimal.Decimal `json:"expected_due"`
	NetCashFlow     decimal.Decimal `json:"net_cash_flow"`   // collected minus released
	CollectionRate  float64         `json:"collection_rate"` // percent of ExpectedDue collected
}

const monthLayout = "2006-01"

func inMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}

// BuildMonthMetrics aggregates loans and payments into the metrics for
// one calendar month. Expected due is taken from the derived schedules
// of every loan, regardless of the loan's start month; collections count
// paid records by their paid date.
func BuildMonthMetrics(loans []models.Loan, payments []models.Payment, year int, month time.Month) MonthMetrics {
	totalCollected := decimal.Zero
	paymentsCount := 0
	for _, p := range payments {
		if !p.IsPaid || !inMonth(p.PaidDate, year, month) {
			continue
		}
		totalCollected = totalCollected.Add(p.AmountPaid)
		paymentsCount++
	}

	capitalReleased := decimal.Zero
	newLoansCount := 0
	expectedDue := decimal.Zero
	for _, loan := range loans {
		if inMonth(loan.StartDate, year, month) {
			capitalReleased = capitalReleased.Add(loan.Principal)
			newLoansCount++
		}
		for _, item := range schedule.Generate(loan) {
			if inMonth(item.DueDate, year, month) {
				expectedDue = expectedDue.Add(item.TotalAmount)
			}
		}
	}

	collectionRate := 0.0
	if expectedDue.IsPositive() {
		collectionRate = totalCollected.Div(expectedDue).InexactFloat64() * 100
	}

	return MonthMetrics{
		Month:           time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout),
		TotalCollected:  totalCollected,
		PaymentsCount:   paymentsCount,
		CapitalReleased: capitalReleased,
		NewLoansCount:   newLoansCount,
		ExpectedDue:     expectedDue,
		NetCashFlow:     totalCollected.Sub(capitalReleased),
		CollectionRate:  collectionRate,
	}
}
