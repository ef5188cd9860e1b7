package process

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-editor/internal/domain"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func txnsOn(dates ...civil.Date) []domain.Transaction {
	txns := make([]domain.Transaction, len(dates))
	for i, d := range dates {
		txns[i] = domain.Transaction{Date: d, Description: "txn"}
	}
	return txns
}

func TestSequenceDatesPreserveSpacing(t *testing.T) {
	// Two transactions 4 days apart scaled into a 28-day window: the scale
	// factor is 7, so they land on the window edges.
	txns := txnsOn(date(2023, 5, 10), date(2023, 5, 14))

	SequenceDates(txns, date(2024, 2, 1), date(2024, 2, 29), domain.MethodPreserveSpacing)

	if txns[0].Date != date(2024, 2, 1) {
		t.Errorf("txns[0].Date = %v, want 2024-02-01", txns[0].Date)
	}
	if txns[1].Date != date(2024, 2, 29) {
		t.Errorf("txns[1].Date = %v, want 2024-02-29", txns[1].Date)
	}
}

func TestSequenceDatesPreserveSpacingProportions(t *testing.T) {
	// Days 0, 2, 10 into a 20-day window: scale factor 2 maps them to
	// offsets 0, 4, 20.
	txns := txnsOn(date(2023, 1, 1), date(2023, 1, 3), date(2023, 1, 11))

	SequenceDates(txns, date(2024, 3, 1), date(2024, 3, 21), domain.MethodPreserveSpacing)

	want := []civil.Date{date(2024, 3, 1), date(2024, 3, 5), date(2024, 3, 21)}
	for i, w := range want {
		if txns[i].Date != w {
			t.Errorf("txns[%d].Date = %v, want %v", i, txns[i].Date, w)
		}
	}
}

func TestSequenceDatesRecordsOriginalDates(t *testing.T) {
	orig := []civil.Date{date(2023, 5, 10), date(2023, 5, 14)}
	txns := txnsOn(orig...)

	SequenceDates(txns, date(2024, 2, 1), date(2024, 2, 29), domain.MethodPreserveSpacing)

	for i := range txns {
		if txns[i].OriginalDate == nil {
			t.Fatalf("txns[%d].OriginalDate is nil", i)
		}
		if *txns[i].OriginalDate != orig[i] {
			t.Errorf("txns[%d].OriginalDate = %v, want %v", i, *txns[i].OriginalDate, orig[i])
		}
	}
}

func TestSequenceDatesSingleGenerationOfHistory(t *testing.T) {
	txns := txnsOn(date(2023, 5, 10), date(2023, 5, 14))

	SequenceDates(txns, date(2024, 2, 1), date(2024, 2, 29), domain.MethodPreserveSpacing)
	firstPass := []civil.Date{txns[0].Date, txns[1].Date}

	SequenceDates(txns, date(2024, 3, 1), date(2024, 3, 31), domain.MethodPreserveSpacing)

	// The second call overwrites OriginalDate with the first pass's dates,
	// not the true originals.
	for i := range txns {
		if *txns[i].OriginalDate != firstPass[i] {
			t.Errorf("txns[%d].OriginalDate = %v, want %v", i, *txns[i].OriginalDate, firstPass[i])
		}
	}
}

func TestSequenceDatesPreservesCountAndOrder(t *testing.T) {
	txns := txnsOn(date(2023, 1, 5), date(2023, 1, 2), date(2023, 1, 20), date(2023, 1, 9))
	for i := range txns {
		txns[i].Description = string(rune('a' + i))
	}

	SequenceDates(txns, date(2024, 1, 1), date(2024, 1, 31), domain.MethodPreserveSpacing)

	if len(txns) != 4 {
		t.Fatalf("len = %d, want 4", len(txns))
	}
	for i := range txns {
		if txns[i].Description != string(rune('a'+i)) {
			t.Errorf("txns[%d] reordered: description %q", i, txns[i].Description)
		}
	}
}

func TestSequenceDatesIdenticalDatesFallsBackToUniform(t *testing.T) {
	same := date(2023, 6, 15)
	proportional := txnsOn(same, same, same)
	uniform := txnsOn(same, same, same)

	start, end := date(2024, 1, 1), date(2024, 1, 31)
	SequenceDates(proportional, start, end, domain.MethodPreserveSpacing)
	SequenceDates(uniform, start, end, domain.MethodUniform)

	for i := range proportional {
		if proportional[i].Date != uniform[i].Date {
			t.Errorf("index %d: preserve_spacing %v != uniform %v",
				i, proportional[i].Date, uniform[i].Date)
		}
	}
}

func TestSequenceDatesUniformSingleTransaction(t *testing.T) {
	txns := txnsOn(date(2023, 7, 9))

	SequenceDates(txns, date(2024, 2, 1), date(2024, 2, 29), domain.MethodUniform)

	if txns[0].Date != date(2024, 2, 1) {
		t.Errorf("Date = %v, want start date 2024-02-01", txns[0].Date)
	}
}

func TestSequenceDatesUniformSpreads(t *testing.T) {
	txns := txnsOn(date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3), date(2023, 1, 4))

	// 30-day span over 3 intervals: offsets 0, 10, 20, 30.
	SequenceDates(txns, date(2024, 1, 1), date(2024, 1, 31), domain.MethodUniform)

	want := []civil.Date{date(2024, 1, 1), date(2024, 1, 11), date(2024, 1, 21), date(2024, 1, 31)}
	for i, w := range want {
		if txns[i].Date != w {
			t.Errorf("txns[%d].Date = %v, want %v", i, txns[i].Date, w)
		}
	}
}

func TestSequenceDatesUniformTruncationCollapses(t *testing.T) {
	// 5 transactions in a 2-day window: interval 0.5 truncates offsets to
	// 0, 0, 1, 1, 2. Collapsing distinct positions is accepted behavior.
	txns := txnsOn(date(2023, 1, 1), date(2023, 1, 2), date(2023, 1, 3), date(2023, 1, 4), date(2023, 1, 5))

	SequenceDates(txns, date(2024, 1, 1), date(2024, 1, 3), domain.MethodUniform)

	want := []civil.Date{date(2024, 1, 1), date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 2), date(2024, 1, 3)}
	for i, w := range want {
		if txns[i].Date != w {
			t.Errorf("txns[%d].Date = %v, want %v", i, txns[i].Date, w)
		}
	}
}

func TestSequenceDatesZeroWindowSpan(t *testing.T) {
	// A single-day window collapses everything onto the start date under
	// either method.
	txns := txnsOn(date(2023, 1, 1), date(2023, 1, 15))

	SequenceDates(txns, date(2024, 6, 1), date(2024, 6, 1), domain.MethodPreserveSpacing)

	for i := range txns {
		if txns[i].Date != date(2024, 6, 1) {
			t.Errorf("txns[%d].Date = %v, want 2024-06-01", i, txns[i].Date)
		}
	}
}

func TestSequenceDatesEmptyList(t *testing.T) {
	SequenceDates(nil, date(2024, 1, 1), date(2024, 1, 31), domain.MethodPreserveSpacing)
}
