package process

import (
	"testing"

	"github.com/dvloznov/statement-editor/internal/domain"
)

func TestRecalculate(t *testing.T) {
	st := &domain.Statement{
		OpeningBalance: 1000.00,
		Transactions: []domain.Transaction{
			{Date: date(2024, 1, 1), Description: "Salary", Credit: 1000},
			{Date: date(2024, 1, 5), Description: "ATM", Debit: 200},
		},
	}

	Recalculate(st)

	if st.Transactions[0].Balance != 2000.00 {
		t.Errorf("balance[0] = %v, want 2000.00", st.Transactions[0].Balance)
	}
	if st.Transactions[1].Balance != 1800.00 {
		t.Errorf("balance[1] = %v, want 1800.00", st.Transactions[1].Balance)
	}
	if st.TotalCredits != 1000.00 {
		t.Errorf("TotalCredits = %v, want 1000.00", st.TotalCredits)
	}
	if st.TotalDebits != 200.00 {
		t.Errorf("TotalDebits = %v, want 200.00", st.TotalDebits)
	}
	if st.ClosingBalance != 1800.00 {
		t.Errorf("ClosingBalance = %v, want 1800.00", st.ClosingBalance)
	}
}

func TestRecalculateSumInvariant(t *testing.T) {
	st := &domain.Statement{
		OpeningBalance: 523.17,
		Transactions: []domain.Transaction{
			{Date: date(2024, 1, 1), Credit: 1200.55},
			{Date: date(2024, 1, 2), Debit: 89.99},
			{Date: date(2024, 1, 3), Credit: 0.01},
			{Date: date(2024, 1, 4), Debit: 1033.33},
			{Date: date(2024, 1, 5), Credit: 45.10},
		},
	}

	Recalculate(st)

	want := domain.Round2(st.OpeningBalance + st.TotalCredits - st.TotalDebits)
	if st.ClosingBalance != want {
		t.Errorf("ClosingBalance = %v, want opening + credits - debits = %v", st.ClosingBalance, want)
	}
}

func TestRecalculateRunningBalanceSteps(t *testing.T) {
	st := &domain.Statement{
		OpeningBalance: 100,
		Transactions: []domain.Transaction{
			{Date: date(2024, 1, 1), Credit: 10.10},
			{Date: date(2024, 1, 2), Debit: 5.05},
			{Date: date(2024, 1, 3), Credit: 7.77},
		},
	}

	Recalculate(st)

	prev := st.OpeningBalance
	for i, txn := range st.Transactions {
		want := domain.Round2(prev + txn.Credit - txn.Debit)
		if txn.Balance != want {
			t.Errorf("balance[%d] = %v, want %v", i, txn.Balance, want)
		}
		prev = txn.Balance
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	st := &domain.Statement{
		OpeningBalance: 250.75,
		Transactions: []domain.Transaction{
			{Date: date(2024, 1, 1), Credit: 333.33},
			{Date: date(2024, 1, 2), Debit: 111.11},
		},
	}

	Recalculate(st)
	first := st.Clone()

	Recalculate(st)

	if st.ClosingBalance != first.ClosingBalance ||
		st.TotalCredits != first.TotalCredits ||
		st.TotalDebits != first.TotalDebits {
		t.Errorf("second pass changed derived totals: %+v vs %+v", st, first)
	}
	for i := range st.Transactions {
		if st.Transactions[i].Balance != first.Transactions[i].Balance {
			t.Errorf("second pass changed balance[%d]: %v vs %v",
				i, st.Transactions[i].Balance, first.Transactions[i].Balance)
		}
	}
}

func TestRecalculateEmptyStatement(t *testing.T) {
	st := &domain.Statement{OpeningBalance: 42.42}

	Recalculate(st)

	if st.ClosingBalance != 42.42 {
		t.Errorf("ClosingBalance = %v, want 42.42", st.ClosingBalance)
	}
	if st.TotalCredits != 0 || st.TotalDebits != 0 {
		t.Errorf("totals = %v/%v, want 0/0", st.TotalCredits, st.TotalDebits)
	}
}

func TestRecalculateOverwritesSourceBalances(t *testing.T) {
	// Balances coming from the source are not authoritative; the pass
	// overwrites them from the opening balance.
	st := &domain.Statement{
		OpeningBalance: 0,
		Transactions: []domain.Transaction{
			{Date: date(2024, 1, 1), Credit: 50, Balance: 9999},
		},
	}

	Recalculate(st)

	if st.Transactions[0].Balance != 50 {
		t.Errorf("balance = %v, want 50", st.Transactions[0].Balance)
	}
}
