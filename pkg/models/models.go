package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentFrequency is the coarse repayment cadence. When a loan carries a
// free-text PaymentInterval the frequency is a derived categorization kept
// for filtering; otherwise it selects a default interval.
type PaymentFrequency string

const (
	FrequencyDaily     PaymentFrequency = "daily"
	FrequencyWeekly    PaymentFrequency = "weekly"
	FrequencyBiMonthly PaymentFrequency = "bi-monthly"
	FrequencyMonthly   PaymentFrequency = "monthly"
)

// LoanStatus is derived from the current payment state. It is never
// persisted; LoanStats carries the only authoritative value.
type LoanStatus string

const (
	StatusActive    LoanStatus = "active"
	StatusOverdue   LoanStatus = "overdue"
	StatusCompleted LoanStatus = "completed"
)

// Loan holds the terms of a personal loan. Interest is flat:
// FlatInterestRate is the total percentage over the whole term, applied
// once, and TotalAmount caches principal plus that interest.
type Loan struct {
	ID               uuid.UUID        `json:"id"`
	CustomerName     string           `json:"customer_name"`
	DateRecorded     time.Time        `json:"date_recorded"`
	Principal        decimal.Decimal  `json:"principal"`
	FlatInterestRate decimal.Decimal  `json:"flat_interest_rate"`
	PaymentInterval  string           `json:"payment_interval,omitempty"` // e.g. "15 days"; empty means use PaymentFrequency
	PaymentFrequency PaymentFrequency `json:"payment_frequency"`
	TermLength       int              `json:"term_length"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"` // due date of the final installment
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	PenaltyRate      decimal.Decimal  `json:"penalty_rate"` // amount charged per day overdue, per installment
	AgreementPhoto   string           `json:"agreement_photo,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Payment records money actually received against one installment.
// Unpaid installments have no Payment row; they exist only in the
// derived schedule. At most one Payment per (LoanID, PaymentNumber).
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	LoanID        uuid.UUID       `json:"loan_id"`
	PaymentNumber int             `json:"payment_number"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaidDate      time.Time       `json:"paid_date"`
	IsPaid        bool            `json:"is_paid"`
	ReceiptPhoto  string          `json:"receipt_photo,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ScheduleItem is one installment of the derived repayment schedule.
// Principal, Interest and TotalAmount are independently rounded equal
// shares of the loan totals; the final installment may carry rounding
// residue.
type ScheduleItem struct {
	PaymentNumber int             `json:"payment_number"`
	DueDate       time.Time       `json:"due_date"`
	Principal     decimal.Decimal `json:"principal"`
	Interest      decimal.Decimal `json:"interest"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Balance       decimal.Decimal `json:"balance"` // principal remaining after this installment
}

// StatsItem is a ScheduleItem annotated with payment and overdue state
// as of the day the stats were computed.
type StatsItem struct {
	ScheduleItem
	IsPaid      bool            `json:"is_paid"`
	IsPastDue   bool            `json:"is_past_due"`
	DaysOverdue int             `json:"days_overdue"`
	Penalty     decimal.Decimal `json:"penalty"`
}

// LoanStats is the full derived state of a loan: recomputed on every
// read, never persisted, and stale the moment the loan or its payments
// change.
type LoanStats struct {
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalPenalties decimal.Decimal `json:"total_penalties"`
	TotalDue       decimal.Decimal `json:"total_due"` // TotalAmount + TotalPenalties
	Outstanding    decimal.Decimal `json:"outstanding"`
	Status         LoanStatus      `json:"status"`
	Progress       float64         `json:"progress"` // percent of TotalDue paid, capped at 100
	NextDueDate    *time.Time      `json:"next_due_date,omitempty"`
	Schedule       []StatsItem     `json:"schedule"`
}
