package process

import (
	"sort"

	"github.com/dvloznov/statement-editor/internal/audit"
	"github.com/dvloznov/statement-editor/internal/domain"
)

// ApplyEdits applies one edit request to the statement in place: header
// field edits, indexed transaction edits, an optional date-sequencing pass,
// an optional salary-entry insertion, and finally a mandatory balance
// recalculation so the aggregate is fully consistent before control returns.
//
// Every logical field change is mirrored into the trail, one append per
// change. The request is assumed validated (domain.ValidateEditRequest);
// transaction edits with out-of-range indexes are skipped.
func ApplyEdits(st *domain.Statement, req *domain.EditRequest, trail *audit.Trail, userID string) {
	applyHeaderEdits(st, req, trail, userID)
	applyTransactionEdits(st, req, trail, userID)

	if req.ApplyDateSequencing && req.StartDate != nil && req.EndDate != nil {
		applySequencing(st, req, trail, userID)
	}

	if req.SalaryAmount > 0 && req.SalaryDate != nil {
		insertSalaryEntry(st, req, trail, userID)
	}

	oldClosing := st.ClosingBalance
	Recalculate(st)
	if st.ClosingBalance != oldClosing {
		trail.Append("closing_balance", oldClosing, st.ClosingBalance, audit.ChangeTypeCalculation, nil, userID)
	}
}

func applyHeaderEdits(st *domain.Statement, req *domain.EditRequest, trail *audit.Trail, userID string) {
	edits := []struct {
		name  string
		value string
		field *string
	}{
		{"account_holder", req.AccountHolder, &st.Header.AccountHolder},
		{"account_number", req.AccountNumber, &st.Header.AccountNumber},
		{"ifsc", req.IFSC, &st.Header.IFSC},
		{"micr", req.MICR, &st.Header.MICR},
		{"branch", req.Branch, &st.Header.Branch},
	}

	for _, e := range edits {
		if e.value == "" {
			continue
		}
		old := *e.field
		*e.field = e.value
		trail.Append(e.name, old, e.value, audit.ChangeTypeHeader, nil, userID)
	}
}

func applyTransactionEdits(st *domain.Statement, req *domain.EditRequest, trail *audit.Trail, userID string) {
	for _, edit := range req.TransactionEdits {
		if edit.Index < 0 || edit.Index >= len(st.Transactions) {
			continue
		}
		idx := edit.Index
		txn := &st.Transactions[idx]

		if edit.Date != nil {
			old := txn.Date
			txn.Date = *edit.Date
			trail.Append("date", old.String(), edit.Date.String(), audit.ChangeTypeTransaction, &idx, userID)
		}
		if edit.Description != nil {
			old := txn.Description
			txn.Description = *edit.Description
			trail.Append("description", old, *edit.Description, audit.ChangeTypeTransaction, &idx, userID)
		}
		if edit.Credit != nil {
			old := txn.Credit
			txn.SetCredit(*edit.Credit)
			trail.Append("credit", old, txn.Credit, audit.ChangeTypeTransaction, &idx, userID)
		}
		if edit.Debit != nil {
			old := txn.Debit
			txn.SetDebit(*edit.Debit)
			trail.Append("debit", old, txn.Debit, audit.ChangeTypeTransaction, &idx, userID)
		}
		if edit.Ref != nil {
			old := txn.Ref
			txn.Ref = *edit.Ref
			trail.Append("ref", old, *edit.Ref, audit.ChangeTypeTransaction, &idx, userID)
		}
	}
}

func applySequencing(st *domain.Statement, req *domain.EditRequest, trail *audit.Trail, userID string) {
	SequenceDates(st.Transactions, *req.StartDate, *req.EndDate, req.Method())

	for i := range st.Transactions {
		txn := st.Transactions[i]
		if txn.OriginalDate != nil && *txn.OriginalDate != txn.Date {
			idx := i
			trail.Append("date", txn.OriginalDate.String(), txn.Date.String(), audit.ChangeTypeTransaction, &idx, userID)
		}
	}
}

func insertSalaryEntry(st *domain.Statement, req *domain.EditRequest, trail *audit.Trail, userID string) {
	desc := req.SalaryDescription
	if desc == "" {
		desc = domain.DefaultSalaryDescription
	}

	st.Transactions = append(st.Transactions, domain.NewTransaction(*req.SalaryDate, desc, req.SalaryAmount, 0))
	sort.SliceStable(st.Transactions, func(i, j int) bool {
		return st.Transactions[i].Date.Before(st.Transactions[j].Date)
	})

	trail.Append("salary", nil, domain.Round2(req.SalaryAmount), audit.ChangeTypeTransaction, nil, userID)
}
