package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lendbook/lendbook/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	_, err = db.Exec("PRAGMA journal_mode = WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	log.Println("Database connection established and schema initialized.")
	return s, nil
}

// initSchema creates the database tables if they don't already exist.
// We use TEXT for decimal fields in SQLite to ensure no precision is lost.
// Loan status is intentionally absent: it is derived on every read, never
// stored. The unique index on (loan_id, payment_number) guarantees at
// most one payment record per installment.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		date_recorded DATETIME NOT NULL,
		principal TEXT NOT NULL,
		flat_interest_rate TEXT NOT NULL DEFAULT '0',
		payment_interval TEXT NOT NULL DEFAULT '',
		payment_frequency TEXT NOT NULL DEFAULT 'monthly',
		term_length INTEGER NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		total_amount TEXT NOT NULL DEFAULT '0',
		penalty_rate TEXT NOT NULL DEFAULT '0',
		agreement_photo TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL,
		payment_number INTEGER NOT NULL,
		amount_paid TEXT NOT NULL DEFAULT '0',
		paid_date DATETIME NOT NULL,
		is_paid INTEGER NOT NULL DEFAULT 0,
		receipt_photo TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE(loan_id, payment_number),
		FOREIGN KEY(loan_id) REFERENCES loans(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const loanColumns = `id, customer_name, date_recorded, principal, flat_interest_rate, payment_interval, payment_frequency, term_length, start_date, end_date, total_amount, penalty_rate, agreement_photo, notes, created_at, updated_at`

// CreateLoan inserts a new loan into the database.
func (s *SQLiteStore) CreateLoan(loan *models.Loan) error {
	_, err := s.db.Exec(
		`INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID.String(), loan.CustomerName, loan.DateRecorded, loan.Principal, loan.FlatInterestRate, loan.PaymentInterval, string(loan.PaymentFrequency), loan.TermLength, loan.StartDate, loan.EndDate, loan.TotalAmount, loan.PenaltyRate, loan.AgreementPhoto, loan.Notes, loan.CreatedAt, loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoan retrieves a loan by its ID.
func (s *SQLiteStore) GetLoan(id uuid.UUID) (*models.Loan, error) {
	row := s.db.QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id.String())
	loan, err := scanLoan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loan not found")
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

// UpdateLoan updates an existing loan in the database.
func (s *SQLiteStore) UpdateLoan(loan *models.Loan) error {
	result, err := s.db.Exec(
		`UPDATE loans SET customer_name = ?, date_recorded = ?, principal = ?, flat_interest_rate = ?, payment_interval = ?, payment_frequency = ?, term_length = ?, start_date = ?, end_date = ?, total_amount = ?, penalty_rate = ?, agreement_photo = ?, notes = ?, updated_at = ? WHERE id = ?`,
		loan.CustomerName, loan.DateRecorded, loan.Principal, loan.FlatInterestRate, loan.PaymentInterval, string(loan.PaymentFrequency), loan.TermLength, loan.StartDate, loan.EndDate, loan.TotalAmount, loan.PenaltyRate, loan.AgreementPhoto, loan.Notes, loan.UpdatedAt, loan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("loan not found")
	}
	return nil
}

// DeleteLoan removes a loan and its payments from the database within a transaction.
func (s *SQLiteStore) DeleteLoan(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM payments WHERE loan_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete associated payments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM loans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("loan not found")
	}

	return tx.Commit()
}

// GetAllLoans retrieves all loans ordered by recording date.
func (s *SQLiteStore) GetAllLoans() ([]*models.Loan, error) {
	rows, err := s.db.Query(`SELECT ` + loanColumns + ` FROM loans ORDER BY date_recorded ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return loans, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var loan models.Loan
	var idStr, frequency string
	var recorded, start, end, created, updated time.Time
	if err := row.Scan(&idStr, &loan.CustomerName, &recorded, &loan.Principal, &loan.FlatInterestRate, &loan.PaymentInterval, &frequency, &loan.TermLength, &start, &end, &loan.TotalAmount, &loan.PenaltyRate, &loan.AgreementPhoto, &loan.Notes, &created, &updated); err != nil {
		return nil, err
	}
	loan.ID = uuid.MustParse(idStr)
	loan.PaymentFrequency = models.PaymentFrequency(frequency)
	loan.DateRecorded = recorded
	loan.StartDate = start
	loan.EndDate = end
	loan.CreatedAt = created
	loan.UpdatedAt = updated
	return &loan, nil
}

const paymentColumns = `id, loan_id, payment_number, amount_paid, paid_date, is_paid, receipt_photo, notes, created_at`

// UpsertPayment inserts a payment, or overwrites the existing record for
// the same (loan, payment number). The original row id and created_at
// survive an overwrite, so re-recording an installment cannot mint a
// duplicate.
func (s *SQLiteStore) UpsertPayment(payment *models.Payment) error {
	_, err := s.db.Exec(
		`INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(loan_id, payment_number) DO UPDATE SET
			amount_paid = excluded.amount_paid,
			paid_date = excluded.paid_date,
			is_paid = excluded.is_paid,
			receipt_photo = excluded.receipt_photo,
			notes = excluded.notes`,
		payment.ID.String(), payment.LoanID.String(), payment.PaymentNumber, payment.AmountPaid, payment.PaidDate, payment.IsPaid, payment.ReceiptPhoto, payment.Notes, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves the payment recorded for one installment.
func (s *SQLiteStore) GetPayment(loanID uuid.UUID, paymentNumber int) (*models.Payment, error) {
	row := s.db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE loan_id = ? AND payment_number = ?`, loanID.String(), paymentNumber)
	payment, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// GetPaymentsForLoan retrieves all payments for a given loan ID.
func (s *SQLiteStore) GetPaymentsForLoan(loanID uuid.UUID) ([]*models.Payment, error) {
	rows, err := s.db.Query(`SELECT `+paymentColumns+` FROM payments WHERE loan_id = ? ORDER BY payment_number ASC`, loanID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	return s.scanPayments(rows)
}

// GetAllPayments retrieves every recorded payment.
func (s *SQLiteStore) GetAllPayments() ([]*models.Payment, error) {
	rows, err := s.db.Query(`SELECT ` + paymentColumns + ` FROM payments ORDER BY loan_id, payment_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all payments: %w", err)
	}
	defer rows.Close()

	return s.scanPayments(rows)
}

func (s *SQLiteStore) scanPayments(rows *sql.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return payments, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var payment models.Payment
	var idStr, loanIDStr string
	var paidDate, created time.Time
	if err := row.Scan(&idStr, &loanIDStr, &payment.PaymentNumber, &payment.AmountPaid, &paidDate, &payment.IsPaid, &payment.ReceiptPhoto, &payment.Notes, &created); err != nil {
		return nil, err
	}
	payment.ID = uuid.MustParse(idStr)
	payment.LoanID = uuid.MustParse(loanIDStr)
	payment.PaidDate = paidDate
	payment.CreatedAt = created
	return &payment, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
