package schedule

import (
	"time"

	"github.com/lendbook/lendbook/pkg/models"
	"github.com/shopspring/decimal"
)

// daysBetween counts whole calendar days from a to b, immune to DST
// offsets in either date's location.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// completionTolerance absorbs the rounding drift of equal-share
// installments: a loan whose outstanding balance is within one unit of
// zero counts as completed.
var completionTolerance = decimal.NewFromInt(1)

// ComputeStats derives the full current state of a loan from its terms
// and the set of recorded payments, as of today.
func ComputeStats(loan models.Loan, payments []models.Payment) models.LoanStats {
	return ComputeStatsAt(loan, payments, time.Now())
}

// ComputeStatsAt is ComputeStats with an explicit reference day. It is
// idempotent and never fails: malformed or missing fields degrade to
// safe defaults so a report can always be rendered.
//
// The schedule is regenerated from the loan terms on every call; it is
// never cached. Payments for other loans are ignored, as are records not
// flagged paid. Per installment, a payment matched by number means paid;
// an unpaid installment due before today is past due and accrues the
// loan's daily penalty, uncapped, until it is paid. Penalties are not
// reduced by partial payment of the amount due.
func ComputeStatsAt(loan models.Loan, payments []models.Payment, today time.Time) models.LoanStats {
	paid := make(map[int]models.Payment, len(payments))
	totalPaid := decimal.Zero
	for _, p := range payments {
		if p.LoanID != loan.ID || !p.IsPaid {
			continue
		}
		// First record wins; the store's uniqueness constraint makes
		// duplicates unreachable in practice.
		if _, ok := paid[p.PaymentNumber]; ok {
			continue
		}
		paid[p.PaymentNumber] = p
		totalPaid = totalPaid.Add(p.AmountPaid)
	}

	day := truncateToDay(today)
	totalPenalties := decimal.Zero
	hasOverdue := false
	var nextDueDate *time.Time

	plan := Generate(loan)
	items := make([]models.StatsItem, 0, len(plan))
	for _, item := range plan {
		due := truncateToDay(item.DueDate)

		// Compare as calendar days, not instants: an installment due
		// today is not past due regardless of the zones the due date
		// and the reference day were constructed in.
		overdue := daysBetween(due, day)

		_, isPaid := paid[item.PaymentNumber]
		isPastDue := !isPaid && overdue > 0

		daysOverdue := 0
		if isPastDue {
			daysOverdue = overdue
		}
		penalty := Penalty(loan.PenaltyRate, daysOverdue)

		if isPastDue {
			hasOverdue = true
			totalPenalties = totalPenalties.Add(penalty)
		}

		if !isPaid && nextDueDate == nil && overdue <= 0 {
			d := due
			nextDueDate = &d
		}

		items = append(items, models.StatsItem{
			ScheduleItem: item,
			IsPaid:       isPaid,
			IsPastDue:    isPastDue,
			DaysOverdue:  daysOverdue,
			Penalty:      penalty,
		})
	}

	// No upcoming unpaid installment: fall back to the earliest overdue
	// one so the caller still sees what needs attention next.
	if nextDueDate == nil && hasOverdue {
		for _, item := range items {
			if item.IsPastDue {
				d := truncateToDay(item.DueDate)
				nextDueDate = &d
				break
			}
		}
	}

	totalDue := loan.TotalAmount.Add(totalPenalties)
	outstanding := totalDue.Sub(totalPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	status := models.StatusActive
	switch {
	case outstanding.LessThanOrEqual(completionTolerance):
		status = models.StatusCompleted
	case hasOverdue:
		status = models.StatusOverdue
	}

	progress := 0.0
	if totalDue.IsPositive() {
		progress = totalPaid.Div(totalDue).InexactFloat64() * 100
		if progress > 100 {
			progress = 100
		}
	}

	return models.LoanStats{
		TotalPaid:      totalPaid,
		TotalPenalties: totalPenalties,
		TotalDue:       totalDue,
		Outstanding:    outstanding,
		Status:         status,
		Progress:       progress,
		NextDueDate:    nextDueDate,
		Schedule:       items,
	}
}
