package process

import "github.com/dvloznov/statement-editor/internal/domain"

// Recalculate runs the single-pass running-balance computation over the
// statement in its current transaction order. It is the only writer of the
// per-transaction Balance field and the derived ClosingBalance, TotalCredits
// and TotalDebits.
//
// The per-transaction balance is rounded at every step, while the totals are
// accumulated unrounded and rounded once at the end so the totals themselves
// carry no cumulative rounding drift. The pass is a pure function of the
// opening balance and the ordered credit/debit values: running it twice
// yields identical output.
func Recalculate(st *domain.Statement) {
	running := st.OpeningBalance
	var totalCredits, totalDebits float64

	for i := range st.Transactions {
		txn := &st.Transactions[i]
		running += txn.Credit
		running -= txn.Debit
		txn.Balance = domain.Round2(running)

		totalCredits += txn.Credit
		totalDebits += txn.Debit
	}

	st.TotalCredits = domain.Round2(totalCredits)
	st.TotalDebits = domain.Round2(totalDebits)
	st.ClosingBalance = domain.Round2(running)
}
