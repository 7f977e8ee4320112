// Package report renders loan summaries and monthly analytics for
// dashboards and tabular export. Summary values are taken verbatim from
// the loan and its derived stats; the analytics lean on the engine's
// derived schedules.
package report

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/lendbook/lendbook/pkg/models"
	"github.com/shopspring/decimal"
)

// Row is one loan's summary line: the renewal terms plus the derived
// payment state, monetary values formatted to 2 decimal places.
type Row struct {
	ClientName    string          `json:"client_name"`
	RenewalDate   string          `json:"renewal_date"`
	RenewalAmount decimal.Decimal `json:"renewal_amount"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Penalties     decimal.Decimal `json:"penalties"`
	TotalDue      decimal.Decimal `json:"total_due"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	NextDueDate   string          `json:"next_due_date"` // "Done" when nothing is left unpaid
	Status        string          `json:"status"`
}

const dateLayout = "2006-01-02"

// BuildRow flattens a loan and its stats into a summary row.
func BuildRow(loan models.Loan, stats models.LoanStats) Row {
	nextDue := "Done"
	if stats.NextDueDate != nil {
		nextDue = stats.NextDueDate.Format(dateLayout)
	}

	return Row{
		ClientName:    loan.CustomerName,
		RenewalDate:   loan.StartDate.Format(dateLayout),
		RenewalAmount: loan.Principal,
		TotalInterest: loan.TotalAmount.Sub(loan.Principal),
		Penalties:     stats.TotalPenalties,
		TotalDue:      stats.TotalDue,
		TotalPaid:     stats.TotalPaid,
		Outstanding:   stats.Outstanding,
		NextDueDate:   nextDue,
		Status:        strings.ToUpper(string(stats.Status)),
	}
}

// csvHeader matches the dashboard export column order.
var csvHeader = []string{
	"Client Name",
	"Renewal Date",
	"Renewal Amount",
	"Total Interest",
	"Penalties",
	"Total Due",
	"Total Paid",
	"Outstanding",
	"Next Due Date",
	"Status",
}

// WriteCSV writes the rows as CSV, one line per loan.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ClientName,
			row.RenewalDate,
			row.RenewalAmount.StringFixed(2),
			row.TotalInterest.StringFixed(2),
			row.Penalties.StringFixed(2),
			row.TotalDue.StringFixed(2),
			row.TotalPaid.StringFixed(2),
			row.Outstanding.StringFixed(2),
			row.NextDueDate,
			row.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
