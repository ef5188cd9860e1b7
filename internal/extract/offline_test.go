package extract

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "Account Holder: John Doe\n" +
	"Account Number: 123456789\n" +
	"2024-01-01 Salary 1000.00 0.00 2000.00\n" +
	"2024-01-05 ATM 0.00 200.00 1800.00"

func TestOfflineExtractSample(t *testing.T) {
	st, err := NewOfflineExtractor().Extract(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, "John Doe", st.Header.AccountHolder)
	assert.Equal(t, "123456789", st.Header.AccountNumber)
	assert.Equal(t, DefaultBankName, st.Header.BankName)

	require.Len(t, st.Transactions, 2)

	first := st.Transactions[0]
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 1}, first.Date)
	assert.Equal(t, "Salary", first.Description)
	assert.Equal(t, 1000.0, first.Credit)
	assert.Equal(t, 0.0, first.Debit)
	assert.Equal(t, 2000.0, first.Balance)

	second := st.Transactions[1]
	assert.Equal(t, "ATM", second.Description)
	assert.Equal(t, 0.0, second.Credit)
	assert.Equal(t, 200.0, second.Debit)
	assert.Equal(t, 1800.0, second.Balance)

	// Derived from the first captured balance.
	assert.Equal(t, 1000.0, st.OpeningBalance)
}

func TestOfflineExtractHeaderDefaults(t *testing.T) {
	st, err := NewOfflineExtractor().Extract(context.Background(), "just some text\nnothing labeled")
	require.NoError(t, err)

	assert.Equal(t, DefaultAccountHolder, st.Header.AccountHolder)
	assert.Equal(t, DefaultAccountNumber, st.Header.AccountNumber)
	assert.Equal(t, DefaultBankName, st.Header.BankName)
	assert.Empty(t, st.Header.IFSC)
	assert.Empty(t, st.Header.Branch)
}

func TestOfflineExtractPlaceholderWhenNoRows(t *testing.T) {
	st, err := NewOfflineExtractor().Extract(context.Background(), "Account Holder: Jane\nno rows here")
	require.NoError(t, err)

	require.Len(t, st.Transactions, 1)
	placeholder := st.Transactions[0]
	assert.Equal(t, PlaceholderDescription, placeholder.Description)
	assert.Equal(t, 0.0, placeholder.Credit)
	assert.Equal(t, 0.0, placeholder.Debit)
	assert.Equal(t, civil.DateOf(time.Now()), placeholder.Date)
}

func TestOfflineExtractBackfillsMissingBalance(t *testing.T) {
	text := "Opening Balance: 500.00\n" +
		"2024-03-01 Deposit 100.00\n" +
		"2024-03-02 Purchase 0.00 40.00"
	st, err := NewOfflineExtractor().Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, 500.0, st.OpeningBalance)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, 600.0, st.Transactions[0].Balance)
	assert.Equal(t, 560.0, st.Transactions[1].Balance)
}

func TestOfflineExtractCapturedBalanceResetsRunningTotal(t *testing.T) {
	// The second row carries an explicit balance that disagrees with the
	// computed running total. The explicit value wins and seeds the rest.
	text := "2024-03-01 Deposit 100.00 0.00 100.00\n" +
		"2024-03-02 Adjustment 0.00 10.00 500.00\n" +
		"2024-03-03 Fee 0.00 20.00"
	st, err := NewOfflineExtractor().Extract(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, st.Transactions, 3)
	assert.Equal(t, 500.0, st.Transactions[1].Balance)
	assert.Equal(t, 480.0, st.Transactions[2].Balance)
}

func TestOfflineExtractLabelPriority(t *testing.T) {
	// "Account Holder" outranks "Customer Name" even when it appears later.
	text := "Customer Name: Secondary\nAccount Holder: Primary"
	st, err := NewOfflineExtractor().Extract(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "Primary", st.Header.AccountHolder)
}

func TestOfflineExtractSkipsMalformedRows(t *testing.T) {
	text := "2024-13-40 Bad Date 10.00\n" +
		"01/02/2024 Wrong Format 10.00\n" +
		"2024-04-01 Good Row 10.00"
	st, err := NewOfflineExtractor().Extract(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, st.Transactions, 1)
	assert.Equal(t, "Good Row", st.Transactions[0].Description)
}

func TestSplitTrailingAmounts(t *testing.T) {
	tests := []struct {
		name        string
		rest        string
		description string
		amounts     []string
	}{
		{"three amounts", "Salary Credit 1000.00 0.00 2000.00", "Salary Credit", []string{"1000.00", "0.00", "2000.00"}},
		{"one amount", "ATM Withdrawal 200.00", "ATM Withdrawal", []string{"200.00"}},
		{"no amounts", "Opening note", "Opening note", nil},
		{"only amounts", "1000.00 0.00", "Transaction", []string{"1000.00", "0.00"}},
		{"currency prefix", "POS ₹1,234.56", "POS", []string{"₹1,234.56"}},
		{"digits in description stay", "ATM1 200.00", "ATM1", []string{"200.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, amounts := splitTrailingAmounts(tt.rest)
			assert.Equal(t, tt.description, desc)
			assert.Equal(t, tt.amounts, amounts)
		})
	}
}

func TestDisambiguateAmounts(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		credit  float64
		debit   float64
	}{
		{"credit only", []string{"100.00", "0.00"}, 100, 0},
		{"debit only", []string{"0.00", "50.00"}, 0, 50},
		{"single token is credit", []string{"75.00"}, 75, 0},
		{"both populated", []string{"100.00", "50.00"}, 100, 50},
		{"both zero", []string{"0.00", "0.00"}, 0, 0},
		{"empty", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credit, debit := disambiguateAmounts(tt.amounts)
			assert.Equal(t, tt.credit, credit)
			assert.Equal(t, tt.debit, debit)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234.56", 1234.56},
		{"₹2,000", 2000},
		{"$99.999", 100},
		{"", 0},
		{"abc", 0},
		{"12.3.4", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.in), "ParseAmount(%q)", tt.in)
	}
}
