package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lendbook/lendbook/pkg/models"
	"github.com/lendbook/lendbook/pkg/report"
	"github.com/lendbook/lendbook/pkg/schedule"
	"github.com/lendbook/lendbook/pkg/store"
	"github.com/shopspring/decimal"
)

// Ledger handles the business logic for loans and payments. All derived
// state (schedules, stats, reports) is recomputed from storage on every
// read; only Loan and Payment rows are ever persisted.
type Ledger struct {
	storage store.Storage // Use the Storage interface
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage) *Ledger {
	return &Ledger{storage: s}
}

// CreateLoanInput carries the terms entered for a new loan. InterestRate
// is the nominal monthly-equivalent percentage; the total flat rate over
// the term is derived from it and the cadence.
type CreateLoanInput struct {
	CustomerName     string                  `json:"customer_name"`
	Principal        decimal.Decimal         `json:"principal"`
	InterestRate     decimal.Decimal         `json:"interest_rate"`
	PaymentInterval  string                  `json:"payment_interval"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency"`
	TermLength       int                     `json:"term_length"`
	StartDate        time.Time               `json:"start_date"`
	PenaltyRate      decimal.Decimal         `json:"penalty_rate"`
	AgreementPhoto   string                  `json:"agreement_photo"`
	Notes            string                  `json:"notes"`
}

// validate rejects terms the engine would otherwise silently default
// around. Creation is the one place bad input surfaces as an error.
func (in CreateLoanInput) validate() error {
	if in.CustomerName == "" {
		return fmt.Errorf("customer name is required")
	}
	if in.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("principal must be positive")
	}
	if in.TermLength <= 0 {
		return fmt.Errorf("term length must be positive")
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	return nil
}

// apply writes the input's terms and all derived fields onto a loan:
// the total flat rate, the cached total amount, the coarse frequency
// category and the end date.
func (in CreateLoanInput) apply(loan *models.Loan) {
	loan.CustomerName = in.CustomerName
	loan.Principal = in.Principal
	loan.PaymentInterval = in.PaymentInterval
	loan.TermLength = in.TermLength
	loan.StartDate = in.StartDate
	loan.PenaltyRate = in.PenaltyRate
	loan.AgreementPhoto = in.AgreementPhoto
	loan.Notes = in.Notes

	if in.PaymentInterval != "" {
		loan.PaymentFrequency = schedule.FrequencyForInterval(in.PaymentInterval)
	} else if in.PaymentFrequency != "" {
		loan.PaymentFrequency = in.PaymentFrequency
	} else {
		loan.PaymentFrequency = models.FrequencyMonthly
	}

	interval := in.PaymentInterval
	if interval == "" {
		interval = schedule.IntervalForFrequency(loan.PaymentFrequency)
	}

	loan.FlatInterestRate = schedule.TotalRate(in.InterestRate, interval, in.TermLength)
	loan.TotalAmount, _ = schedule.ComputeAmount(in.Principal, loan.FlatInterestRate)

	if plan := schedule.Generate(*loan); len(plan) > 0 {
		loan.EndDate = plan[len(plan)-1].DueDate
	}
}

// CreateLoan validates the entered terms, derives the flat rate and
// totals, and persists the new loan. Installments are never materialized
// as unpaid payment rows; the schedule is derived on demand.
func (l *Ledger) CreateLoan(input CreateLoanInput) (*models.Loan, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	loan := &models.Loan{
		ID:           uuid.New(),
		DateRecorded: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	input.apply(loan)

	if err := l.storage.CreateLoan(loan); err != nil {
		return nil, fmt.Errorf("failed to store loan: %w", err)
	}
	return loan, nil
}

// UpdateLoan replaces a loan's terms and re-derives every cached field.
func (l *Ledger) UpdateLoan(id uuid.UUID, input CreateLoanInput) (*models.Loan, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	loan, err := l.storage.GetLoan(id)
	if err != nil {
		return nil, err
	}

	input.apply(loan)
	loan.UpdatedAt = time.Now()

	if err := l.storage.UpdateLoan(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetLoan retrieves a loan by its ID.
func (l *Ledger) GetLoan(id uuid.UUID) (*models.Loan, error) {
	return l.storage.GetLoan(id)
}

// GetAllLoans retrieves all loans.
func (l *Ledger) GetAllLoans() ([]*models.Loan, error) {
	return l.storage.GetAllLoans()
}

// DeleteLoan deletes a loan and its recorded payments.
func (l *Ledger) DeleteLoan(id uuid.UUID) error {
	return l.storage.DeleteLoan(id)
}

// RecordPaymentInput carries one payment against an installment.
type RecordPaymentInput struct {
	PaymentNumber int             `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidDate      time.Time       `json:"paid_date"`
	ReceiptPhoto  string          `json:"receipt_photo"`
	Notes         string          `json:"notes"`
}

// RecordPayment records money received for one installment. Recording
// the same installment twice overwrites the earlier record; the store's
// uniqueness constraint prevents double-recording under any interleaving.
// A zero paid date defaults to today.
func (l *Ledger) RecordPayment(loanID uuid.UUID, input RecordPaymentInput) (*models.Payment, error) {
	loan, err := l.storage.GetLoan(loanID)
	if err != nil {
		return nil, err
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if input.PaymentNumber < 1 || input.PaymentNumber > loan.TermLength {
		return nil, fmt.Errorf("payment number %d outside schedule of %d installments", input.PaymentNumber, loan.TermLength)
	}

	paidDate := input.PaidDate
	if paidDate.IsZero() {
		paidDate = time.Now()
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		PaymentNumber: input.PaymentNumber,
		AmountPaid:    input.Amount,
		PaidDate:      paidDate,
		IsPaid:        true,
		ReceiptPhoto:  input.ReceiptPhoto,
		Notes:         input.Notes,
		CreatedAt:     time.Now(),
	}

	if err := l.storage.UpsertPayment(payment); err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	// Re-read so an overwrite returns the surviving row id.
	return l.storage.GetPayment(loan.ID, input.PaymentNumber)
}

// GetPaymentsForLoan retrieves the recorded payments for a loan.
func (l *Ledger) GetPaymentsForLoan(loanID uuid.UUID) ([]*models.Payment, error) {
	return l.storage.GetPaymentsForLoan(loanID)
}

// Schedule returns the derived installment schedule for a loan.
func (l *Ledger) Schedule(loanID uuid.UUID) ([]models.ScheduleItem, error) {
	loan, err := l.storage.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	return schedule.Generate(*loan), nil
}

// LoanStats computes the full derived state of a loan as of today.
func (l *Ledger) LoanStats(loanID uuid.UUID) (*models.LoanStats, error) {
	loan, err := l.storage.GetLoan(loanID)
	if err != nil {
		return nil, err
	}

	payments, err := l.storage.GetPaymentsForLoan(loanID)
	if err != nil {
		return nil, err
	}

	stats := schedule.ComputeStats(*loan, deref(payments))
	return &stats, nil
}

// Summary builds one report row per loan, stats computed as of today.
func (l *Ledger) Summary() ([]report.Row, error) {
	loans, err := l.storage.GetAllLoans()
	if err != nil {
		return nil, err
	}

	rows := make([]report.Row, 0, len(loans))
	for _, loan := range loans {
		payments, err := l.storage.GetPaymentsForLoan(loan.ID)
		if err != nil {
			return nil, err
		}
		stats := schedule.ComputeStats(*loan, deref(payments))
		rows = append(rows, report.BuildRow(*loan, stats))
	}
	return rows, nil
}

// MonthAnalytics aggregates the whole book's cash flow for one calendar
// month: collections by paid date, capital released by start date, and
// the amount the schedules expected to fall due.
func (l *Ledger) MonthAnalytics(year int, month time.Month) (*report.MonthMetrics, error) {
	loans, err := l.storage.GetAllLoans()
	if err != nil {
		return nil, err
	}
	payments, err := l.storage.GetAllPayments()
	if err != nil {
		return nil, err
	}

	derefLoans := make([]models.Loan, 0, len(loans))
	for _, loan := range loans {
		derefLoans = append(derefLoans, *loan)
	}

	metrics := report.BuildMonthMetrics(derefLoans, deref(payments), year, month)
	return &metrics, nil
}

func deref(payments []*models.Payment) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, *p)
	}
	return out
}
