package extract

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelOutput(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestStatementFromModelOutput(t *testing.T) {
	raw := `{
	  "header": {
	    "bank_name": "State Bank",
	    "account_holder": "John Doe",
	    "account_number": "123456789",
	    "ifsc": "SBIN0001234",
	    "micr": null,
	    "branch": "Main Branch"
	  },
	  "transactions": [
	    {"date": "2024-01-01", "description": "Salary", "credit": 1000.0, "debit": 0.0, "balance": 2000.0, "ref": "TXN001"},
	    {"date": "2024-01-05", "description": "ATM", "credit": 0.0, "debit": 200.005, "balance": 1800.0, "ref": null}
	  ],
	  "opening_balance": 1000.004
	}`

	st, err := statementFromModelOutput(modelOutput(t, raw))
	require.NoError(t, err)

	assert.Equal(t, "John Doe", st.Header.AccountHolder)
	assert.Equal(t, "State Bank", st.Header.BankName)
	assert.Equal(t, "SBIN0001234", st.Header.IFSC)
	assert.Empty(t, st.Header.MICR)
	assert.Equal(t, 1000.0, st.OpeningBalance)

	require.Len(t, st.Transactions, 2)
	first := st.Transactions[0]
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 1}, first.Date)
	assert.Equal(t, 1000.0, first.Credit)
	assert.Equal(t, "TXN001", first.Ref)

	second := st.Transactions[1]
	assert.Equal(t, 200.01, second.Debit, "amounts must round to 2 decimals")
	assert.Empty(t, second.Ref)
}

func TestStatementFromModelOutputErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing header", `{"transactions": []}`},
		{"header wrong type", `{"header": "oops", "transactions": []}`},
		{"missing transactions", `{"header": {"account_holder": "A", "account_number": "1"}}`},
		{"transactions wrong type", `{"header": {"account_holder": "A", "account_number": "1"}, "transactions": {}}`},
		{"missing account holder", `{"header": {"account_number": "1"}, "transactions": []}`},
		{"blank account holder", `{"header": {"account_holder": "  ", "account_number": "1"}, "transactions": []}`},
		{"bad date", `{"header": {"account_holder": "A", "account_number": "1"}, "transactions": [{"date": "01/02/2024", "description": "X"}]}`},
		{"missing description", `{"header": {"account_holder": "A", "account_number": "1"}, "transactions": [{"date": "2024-01-01"}]}`},
		{"credit wrong type", `{"header": {"account_holder": "A", "account_number": "1"}, "transactions": [{"date": "2024-01-01", "description": "X", "credit": "ten"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := statementFromModelOutput(modelOutput(t, tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestStatementFromModelOutputFiltersPageRanges(t *testing.T) {
	raw := `{
	  "header": {"account_holder": "A", "account_number": "1"},
	  "transactions": [],
	  "pages": [
	    {"start": 1, "end": 3, "type": "statement"},
	    {"start": 4, "end": 4, "type": "promotional"},
	    {"start": 5, "end": 5, "type": "attachment"},
	    {"start": 6, "end": 6, "type": "blank"}
	  ]
	}`

	st, err := statementFromModelOutput(modelOutput(t, raw))
	require.NoError(t, err)
	require.Len(t, st.OriginalPageRanges, 2)
	assert.Equal(t, 1, st.OriginalPageRanges[0].Start)
	assert.Equal(t, 5, st.OriginalPageRanges[1].Start)
}

func TestStatementFromModelOutputAbsorbsExtraColumns(t *testing.T) {
	raw := `{
	  "header": {"account_holder": "A", "account_number": "1"},
	  "transactions": [],
	  "extra_columns": {
	    "Narration": ["a", "b"],
	    "Value Date": ["2024-01-01", "2024-01-02"]
	  }
	}`

	st, err := statementFromModelOutput(modelOutput(t, raw))
	require.NoError(t, err)

	// Narration maps onto description and is skipped; Value Date has no
	// canonical column and is carried through.
	require.Len(t, st.ExtraColumns, 1)
	assert.Len(t, st.ExtraColumns["value date"], 2)
}

func TestStatementFromModelOutputOptionalFieldsAbsent(t *testing.T) {
	raw := `{
	  "header": {"account_holder": "A", "account_number": "1"},
	  "transactions": [{"date": "2024-01-01", "description": "X"}]
	}`

	st, err := statementFromModelOutput(modelOutput(t, raw))
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.OpeningBalance)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, 0.0, st.Transactions[0].Credit)
	assert.Equal(t, 0.0, st.Transactions[0].Balance)
}
