// Package process implements the computation passes over a statement
// aggregate: date re-sequencing, running-balance recalculation and the edit
// processor that ties them together with the audit trail. Every pass is a
// synchronous in-place O(n) walk over the transaction sequence; callers are
// responsible for validating inputs and serializing access to the aggregate.
package process

import (
	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-editor/internal/domain"
)

// SequenceDates reassigns every transaction's date into the inclusive
// [start, end] window, recording each pre-reassignment date into
// OriginalDate. Only one generation of history is kept: a second call
// overwrites OriginalDate with the dates from the previous call.
//
// Order is positional: the Nth transaction in the sequence stays the Nth in
// time under either method; the list is never reordered.
func SequenceDates(txns []domain.Transaction, start, end civil.Date, method string) {
	if len(txns) == 0 {
		return
	}

	for i := range txns {
		d := txns[i].Date
		txns[i].OriginalDate = &d
	}

	if method == domain.MethodPreserveSpacing || method == "" {
		preserveSpacing(txns, start, end)
		return
	}
	uniformDistribution(txns, start, end)
}

// preserveSpacing scales the original date offsets to fit the new window.
// Offsets are truncated to whole days, so ties can compress distinct
// original dates onto the same new date.
func preserveSpacing(txns []domain.Transaction, start, end civil.Date) {
	minOrig := txns[0].Date
	maxOrig := txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(minOrig) {
			minOrig = t.Date
		}
		if t.Date.After(maxOrig) {
			maxOrig = t.Date
		}
	}

	origRange := maxOrig.DaysSince(minOrig)
	if origRange == 0 {
		// All dates identical: no spacing to preserve.
		uniformDistribution(txns, start, end)
		return
	}

	scale := float64(end.DaysSince(start)) / float64(origRange)
	for i := range txns {
		offset := int(float64(txns[i].Date.DaysSince(minOrig)) * scale)
		txns[i].Date = start.AddDays(offset)
	}
}

// uniformDistribution spreads the transactions evenly across the window. A
// single transaction lands on start; otherwise position i is offset by
// floor(i * span/(n-1)) days.
func uniformDistribution(txns []domain.Transaction, start, end civil.Date) {
	if len(txns) == 1 {
		txns[0].Date = start
		return
	}

	interval := float64(end.DaysSince(start)) / float64(len(txns)-1)
	for i := range txns {
		txns[i].Date = start.AddDays(int(float64(i) * interval))
	}
}
