package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lendbook/lendbook/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payFull returns a paid record for one installment of the test loan
// (6 monthly installments of 1916.67 against 10000 at 15% flat).
func payFull(loan models.Loan, number int, paidDate time.Time) models.Payment {
	return models.Payment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PaymentNumber: number,
		AmountPaid:    decimal.RequireFromString("1916.67"),
		PaidDate:      paidDate,
		IsPaid:        true,
	}
}

func TestComputeStatsActiveLoan(t *testing.T) {
	loan := testLoan()
	plan := Generate(loan)
	payments := []models.Payment{
		payFull(loan, 1, plan[0].DueDate),
		payFull(loan, 2, plan[1].DueDate),
	}

	// Two installments paid on their due dates, nothing past due yet.
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, payments, today)

	assert.Equal(t, models.StatusActive, stats.Status)
	assert.True(t, stats.TotalPaid.Equal(decimal.RequireFromString("3833.34")), "paid %s", stats.TotalPaid)
	assert.True(t, stats.TotalPenalties.IsZero())
	assert.True(t, stats.Outstanding.Equal(decimal.RequireFromString("7666.66")), "outstanding %s", stats.Outstanding)
	require.NotNil(t, stats.NextDueDate)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *stats.NextDueDate)

	require.Len(t, stats.Schedule, 6)
	assert.True(t, stats.Schedule[0].IsPaid)
	assert.True(t, stats.Schedule[1].IsPaid)
	assert.False(t, stats.Schedule[2].IsPaid)
	assert.False(t, stats.Schedule[2].IsPastDue)
}

func TestComputeStatsOverdueLoan(t *testing.T) {
	loan := testLoan()
	loan.PenaltyRate = decimal.NewFromInt(2)
	plan := Generate(loan)
	payments := []models.Payment{
		payFull(loan, 1, plan[0].DueDate),
		payFull(loan, 2, plan[1].DueDate),
	}

	// Installment 3 fell due 2025-04-01 and is 10 days past.
	today := time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, payments, today)

	assert.Equal(t, models.StatusOverdue, stats.Status)

	third := stats.Schedule[2]
	assert.True(t, third.IsPastDue)
	assert.Equal(t, 10, third.DaysOverdue)
	assert.True(t, third.Penalty.Equal(decimal.NewFromInt(20)), "penalty %s", third.Penalty)

	assert.True(t, stats.TotalPenalties.Equal(decimal.NewFromInt(20)))
	assert.True(t, stats.TotalDue.Equal(decimal.NewFromInt(11520)))

	// The next due date skips the overdue installment when an upcoming
	// one exists.
	require.NotNil(t, stats.NextDueDate)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), *stats.NextDueDate)
}

func TestComputeStatsCompletedLoan(t *testing.T) {
	loan := testLoan()
	plan := Generate(loan)

	var payments []models.Payment
	for _, item := range plan {
		payments = append(payments, payFull(loan, item.PaymentNumber, item.DueDate))
	}

	today := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, payments, today)

	// 6 x 1916.67 overpays by 2 cents; the tolerance band absorbs it.
	assert.Equal(t, models.StatusCompleted, stats.Status)
	assert.True(t, stats.Outstanding.LessThanOrEqual(decimal.NewFromInt(1)))
	assert.Equal(t, 100.0, stats.Progress)
	assert.Nil(t, stats.NextDueDate)
	assert.True(t, stats.TotalPenalties.IsZero())
}

func TestComputeStatsNextDueFallsBackToOverdue(t *testing.T) {
	loan := testLoan()
	loan.PenaltyRate = decimal.NewFromInt(2)

	// Every installment past due, none paid: the next due date falls
	// back to the earliest overdue installment.
	today := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, nil, today)

	assert.Equal(t, models.StatusOverdue, stats.Status)
	require.NotNil(t, stats.NextDueDate)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), *stats.NextDueDate)

	for _, item := range stats.Schedule {
		assert.True(t, item.IsPastDue)
		assert.True(t, item.Penalty.IsPositive())
	}
}

func TestComputeStatsDayGranularityAcrossZones(t *testing.T) {
	loan := testLoan()
	loan.PenaltyRate = decimal.NewFromInt(2)

	// Due dates are stored in UTC; the reference day may come from a
	// local clock west of UTC. On the due day itself the installment is
	// not past due, no matter the offset between the two zones.
	west := time.FixedZone("UTC-5", -5*60*60)
	onDueDay := time.Date(2025, 1, 31, 0, 0, 0, 0, west)
	stats := ComputeStatsAt(loan, nil, onDueDay)

	first := stats.Schedule[0]
	assert.False(t, first.IsPastDue)
	assert.Equal(t, 0, first.DaysOverdue)
	assert.True(t, first.Penalty.IsZero())
	assert.Equal(t, models.StatusActive, stats.Status)
	require.NotNil(t, stats.NextDueDate)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), *stats.NextDueDate)

	// One calendar day later it is overdue by exactly one day.
	dayAfter := time.Date(2025, 2, 1, 0, 0, 0, 0, west)
	stats = ComputeStatsAt(loan, nil, dayAfter)

	first = stats.Schedule[0]
	assert.True(t, first.IsPastDue)
	assert.Equal(t, 1, first.DaysOverdue)
	assert.True(t, first.Penalty.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, models.StatusOverdue, stats.Status)
}

func TestComputeStatsPenaltyKeepsGrowing(t *testing.T) {
	loan := testLoan()
	loan.PenaltyRate = decimal.NewFromInt(2)

	day1 := ComputeStatsAt(loan, nil, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	day2 := ComputeStatsAt(loan, nil, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 1, day1.Schedule[0].DaysOverdue)
	assert.Equal(t, 2, day2.Schedule[0].DaysOverdue)
	assert.True(t, day2.TotalPenalties.GreaterThan(day1.TotalPenalties))
}

func TestComputeStatsIgnoresForeignAndUnpaidRecords(t *testing.T) {
	loan := testLoan()
	plan := Generate(loan)

	other := payFull(loan, 1, plan[0].DueDate)
	other.LoanID = uuid.New() // belongs to a different loan

	unpaid := payFull(loan, 2, plan[1].DueDate)
	unpaid.IsPaid = false

	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, []models.Payment{other, unpaid}, today)

	assert.True(t, stats.TotalPaid.IsZero())
	assert.False(t, stats.Schedule[0].IsPaid)
	assert.False(t, stats.Schedule[1].IsPaid)
}

func TestComputeStatsDuplicatePaymentFirstWins(t *testing.T) {
	loan := testLoan()
	plan := Generate(loan)

	first := payFull(loan, 1, plan[0].DueDate)
	second := payFull(loan, 1, plan[0].DueDate)
	second.AmountPaid = decimal.NewFromInt(9999)

	today := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, []models.Payment{first, second}, today)

	assert.True(t, stats.TotalPaid.Equal(first.AmountPaid), "paid %s", stats.TotalPaid)
}

func TestComputeStatsZeroTotalDue(t *testing.T) {
	loan := testLoan()
	loan.Principal = decimal.Zero
	loan.TotalAmount = decimal.Zero

	today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	stats := ComputeStatsAt(loan, nil, today)

	// Division guard: zero total due reports 0% progress, not NaN.
	assert.Equal(t, 0.0, stats.Progress)
	assert.True(t, stats.Outstanding.IsZero())
}

func TestComputeStatsIdempotent(t *testing.T) {
	loan := testLoan()
	loan.PenaltyRate = decimal.NewFromInt(2)
	plan := Generate(loan)
	payments := []models.Payment{payFull(loan, 1, plan[0].DueDate)}

	today := time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)
	first := ComputeStatsAt(loan, payments, today)
	second := ComputeStatsAt(loan, payments, today)

	assert.Equal(t, first, second)
}
