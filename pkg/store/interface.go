package store

import (
	"github.com/google/uuid"
	"github.com/lendbook/lendbook/pkg/models"
)

// Storage defines the interface for database operations related to loans and payments.
type Storage interface {
	CreateLoan(loan *models.Loan) error
	GetLoan(id uuid.UUID) (*models.Loan, error)
	UpdateLoan(loan *models.Loan) error
	DeleteLoan(id uuid.UUID) error
	GetAllLoans() ([]*models.Loan, error)

	// UpsertPayment inserts a payment or, when one already exists for the
	// same (loan, payment number), overwrites it in place. The store
	// enforces at most one payment per installment.
	UpsertPayment(payment *models.Payment) error
	GetPayment(loanID uuid.UUID, paymentNumber int) (*models.Payment, error)
	GetPaymentsForLoan(loanID uuid.UUID) ([]*models.Payment, error)
	GetAllPayments() ([]*models.Payment, error)

	Close() error
}
