// Package domain holds the statement document model: the header, transaction,
// page range and aggregate types shared by the extraction, processing and API
// layers. The types are plain data containers; the only behavior they carry is
// value normalization (amount rounding) at construction and assignment time.
package domain

import (
	"math"

	"cloud.google.com/go/civil"
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Header holds the statement-level metadata extracted from the document.
// AccountHolder and AccountNumber are required; everything else is free text
// and may be empty.
type Header struct {
	BankName        string `json:"bank_name,omitempty"`
	AccountHolder   string `json:"account_holder"`
	AccountNumber   string `json:"account_number"`
	IFSC            string `json:"ifsc,omitempty"`
	MICR            string `json:"micr,omitempty"`
	Branch          string `json:"branch,omitempty"`
	StatementPeriod string `json:"statement_period,omitempty"`
	Address         string `json:"address,omitempty"`
}

// Transaction represents one statement row. Credit and Debit are non-negative
// and rounded to 2 decimal places whenever they are assigned through the
// setters or constructor. Balance is derived by the balance calculator and is
// not user-authoritative. OriginalDate is set only when date sequencing has
// been applied and holds the pre-sequencing date for audit.
type Transaction struct {
	Date         civil.Date  `json:"date"`
	Description  string      `json:"description"`
	Credit       float64     `json:"credit"`
	Debit        float64     `json:"debit"`
	Balance      float64     `json:"balance"`
	Ref          string      `json:"ref,omitempty"`
	OriginalDate *civil.Date `json:"original_date,omitempty"`
}

// NewTransaction creates a transaction with amounts normalized to 2 decimals.
func NewTransaction(date civil.Date, description string, credit, debit float64) Transaction {
	return Transaction{
		Date:        date,
		Description: description,
		Credit:      Round2(credit),
		Debit:       Round2(debit),
	}
}

// SetCredit assigns the credit amount, rounding to 2 decimals.
func (t *Transaction) SetCredit(v float64) { t.Credit = Round2(v) }

// SetDebit assigns the debit amount, rounding to 2 decimals.
func (t *Transaction) SetDebit(v float64) { t.Debit = Round2(v) }

// SetBalance assigns the running balance, rounding to 2 decimals.
func (t *Transaction) SetBalance(v float64) { t.Balance = Round2(v) }

// Normalize re-rounds all amount fields in place. Used after bulk field
// assignment from decoded JSON, where the setters are bypassed.
func (t *Transaction) Normalize() {
	t.Credit = Round2(t.Credit)
	t.Debit = Round2(t.Debit)
	t.Balance = Round2(t.Balance)
}

// Statement is the aggregate root: header metadata plus the ordered
// transaction sequence. Order is significant and assumed chronological.
// ClosingBalance, TotalCredits and TotalDebits are derived by the balance
// calculator; no other component writes them.
type Statement struct {
	Header             Header               `json:"header"`
	Transactions       []Transaction        `json:"transactions"`
	OriginalPageRanges []PageRange          `json:"original_page_ranges,omitempty"`
	ExtraColumns       map[string][]any     `json:"extra_columns,omitempty"`
	OpeningBalance     float64              `json:"opening_balance"`
	ClosingBalance     float64              `json:"closing_balance"`
	TotalCredits       float64              `json:"total_credits"`
	TotalDebits        float64              `json:"total_debits"`
}

// Clone returns a deep copy of the statement. The registry hands out clones so
// callers never share mutable state with stored aggregates.
func (s *Statement) Clone() *Statement {
	out := *s

	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	for i, t := range s.Transactions {
		if t.OriginalDate != nil {
			d := *t.OriginalDate
			out.Transactions[i].OriginalDate = &d
		}
	}

	if s.OriginalPageRanges != nil {
		out.OriginalPageRanges = make([]PageRange, len(s.OriginalPageRanges))
		copy(out.OriginalPageRanges, s.OriginalPageRanges)
	}

	if s.ExtraColumns != nil {
		out.ExtraColumns = make(map[string][]any, len(s.ExtraColumns))
		for k, v := range s.ExtraColumns {
			vals := make([]any, len(v))
			copy(vals, v)
			out.ExtraColumns[k] = vals
		}
	}

	return &out
}
