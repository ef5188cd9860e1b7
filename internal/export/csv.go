// Package export renders statements for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dvloznov/statement-editor/internal/domain"
)

// CSVWriter writes a statement to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, st *domain.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, st)
}

// Write writes the statement in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, st *domain.Statement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	// Write metadata as comments (CSV header rows)
	if w.IncludeHeader {
		if st.Header.BankName != "" {
			writer.Write([]string{"# Bank", st.Header.BankName})
		}
		if st.Header.AccountHolder != "" {
			writer.Write([]string{"# Account Holder", st.Header.AccountHolder})
		}
		if st.Header.AccountNumber != "" {
			writer.Write([]string{"# Account Number", st.Header.AccountNumber})
		}
		if st.Header.IFSC != "" {
			writer.Write([]string{"# IFSC", st.Header.IFSC})
		}
		if st.Header.Branch != "" {
			writer.Write([]string{"# Branch", st.Header.Branch})
		}
		if st.Header.StatementPeriod != "" {
			writer.Write([]string{"# Statement Period", st.Header.StatementPeriod})
		}
	}

	// Write column headers
	header := []string{"Date", "Description", "Ref", "Credit", "Debit", "Balance"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write transaction rows
	for _, txn := range st.Transactions {
		row := []string{
			txn.Date.String(),
			txn.Description,
			txn.Ref,
			formatAmount(txn.Credit),
			formatAmount(txn.Debit),
			strconv.FormatFloat(txn.Balance, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// formatAmount renders a credit or debit cell. Zero means the column does
// not apply to the row and stays blank.
func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
