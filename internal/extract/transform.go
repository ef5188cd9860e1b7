package extract

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-editor/internal/domain"
)

// statementFromModelOutput converts raw model output into a statement
// aggregate. Any structural mismatch is an error: the extraction service
// treats it as a primary-path failure and falls back to the offline
// extractor.
func statementFromModelOutput(raw map[string]interface{}) (*domain.Statement, error) {
	headerAny, ok := raw["header"]
	if !ok {
		return nil, fmt.Errorf("statementFromModelOutput: missing 'header' key in model output")
	}
	headerObj, ok := headerAny.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("statementFromModelOutput: 'header' is %T, want map[string]interface{}", headerAny)
	}

	header, err := headerFromModelOutput(headerObj)
	if err != nil {
		return nil, err
	}

	txAny, ok := raw["transactions"]
	if !ok {
		return nil, fmt.Errorf("statementFromModelOutput: missing 'transactions' key in model output")
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("statementFromModelOutput: 'transactions' is %T, want []interface{}", txAny)
	}

	txns := make([]domain.Transaction, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("statementFromModelOutput: transaction %d is %T, want map[string]interface{}", i, item)
		}
		txn, err := transactionFromModelOutput(obj)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txns = append(txns, txn)
	}

	openingBalance, err := getOptionalFloat64Field(raw, "opening_balance")
	if err != nil {
		return nil, fmt.Errorf("statementFromModelOutput: %w", err)
	}

	ranges, err := pageRangesFromModelOutput(raw)
	if err != nil {
		return nil, fmt.Errorf("statementFromModelOutput: %w", err)
	}

	st := &domain.Statement{
		Header:             *header,
		Transactions:       txns,
		OriginalPageRanges: domain.FilterRelevantPages(ranges),
	}
	if openingBalance != nil {
		st.OpeningBalance = domain.Round2(*openingBalance)
	}

	// Source columns with no canonical mapping are carried through.
	if extraAny, ok := raw["extra_columns"]; ok && extraAny != nil {
		extraObj, ok := extraAny.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("statementFromModelOutput: 'extra_columns' is %T, want map[string]interface{}", extraAny)
		}
		columns := make(map[string][]any, len(extraObj))
		for name, values := range extraObj {
			list, ok := values.([]interface{})
			if !ok {
				return nil, fmt.Errorf("statementFromModelOutput: extra column %q is %T, want []interface{}", name, values)
			}
			columns[name] = list
		}
		st.AbsorbExtraColumns(columns)
	}

	return st, nil
}

// pageRangesFromModelOutput parses the optional page classification the model
// reports for multi-page input.
func pageRangesFromModelOutput(raw map[string]interface{}) ([]domain.PageRange, error) {
	pagesAny, ok := raw["pages"]
	if !ok || pagesAny == nil {
		return nil, nil
	}
	pagesSlice, ok := pagesAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'pages' is %T, want []interface{}", pagesAny)
	}

	ranges := make([]domain.PageRange, 0, len(pagesSlice))
	for i, item := range pagesSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("page range %d is %T, want map[string]interface{}", i, item)
		}

		start, err := getOptionalFloat64Field(obj, "start")
		if err != nil {
			return nil, fmt.Errorf("page range %d: %w", i, err)
		}
		end, err := getOptionalFloat64Field(obj, "end")
		if err != nil {
			return nil, fmt.Errorf("page range %d: %w", i, err)
		}
		if start == nil || end == nil {
			return nil, fmt.Errorf("page range %d: start and end are required", i)
		}

		pageType, err := getStringField(obj, "type", true)
		if err != nil {
			return nil, fmt.Errorf("page range %d: %w", i, err)
		}

		ranges = append(ranges, domain.PageRange{
			Start:    int(*start),
			End:      int(*end),
			PageType: domain.PageType(pageType),
		})
	}
	return ranges, nil
}

func headerFromModelOutput(obj map[string]interface{}) (*domain.Header, error) {
	holder, err := getStringField(obj, "account_holder", true)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	number, err := getStringField(obj, "account_number", true)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	header := &domain.Header{
		AccountHolder: holder,
		AccountNumber: number,
	}

	optional := []struct {
		key  string
		dest *string
	}{
		{"bank_name", &header.BankName},
		{"ifsc", &header.IFSC},
		{"micr", &header.MICR},
		{"branch", &header.Branch},
		{"statement_period", &header.StatementPeriod},
		{"address", &header.Address},
	}
	for _, f := range optional {
		v, err := getOptionalStringField(obj, f.key)
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		if v != nil {
			*f.dest = *v
		}
	}

	return header, nil
}

func transactionFromModelOutput(obj map[string]interface{}) (domain.Transaction, error) {
	var zero domain.Transaction

	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return zero, err
	}
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return zero, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return zero, err
	}

	credit, err := getOptionalFloat64Field(obj, "credit")
	if err != nil {
		return zero, err
	}
	debit, err := getOptionalFloat64Field(obj, "debit")
	if err != nil {
		return zero, err
	}
	balance, err := getOptionalFloat64Field(obj, "balance")
	if err != nil {
		return zero, err
	}
	ref, err := getOptionalStringField(obj, "ref")
	if err != nil {
		return zero, err
	}

	txn := domain.NewTransaction(date, desc, deref(credit), deref(debit))
	if balance != nil {
		txn.SetBalance(*balance)
	}
	if ref != nil {
		txn.Ref = *ref
	}
	return txn, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getOptionalFloat64Field(m map[string]interface{}, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		f := val
		return &f, nil
	case int: // unlikely from encoding/json, but harmless to support
		f := float64(val)
		return &f, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want number or null", key, v)
	}
}
