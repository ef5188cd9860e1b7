// Package extract turns raw statement text into a structured statement
// aggregate. The primary path sends the text to a Gemini model and parses the
// JSON it returns; the offline path applies line-oriented heuristics. The
// offline extractor is the fallback of last resort and never fails: every
// sub-step degrades to a documented default so downstream components always
// receive a structurally valid statement.
package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/statement-editor/internal/domain"
)

// Defaults used when a header field cannot be located in the text.
const (
	DefaultAccountHolder = "Unknown"
	DefaultBankName      = "Unknown Bank"
	DefaultAccountNumber = "0000000000"
)

// PlaceholderDescription labels the single transaction emitted when no row
// in the text matches the transaction pattern.
const PlaceholderDescription = "No transactions found - please edit manually"

// Ordered label patterns per header field; the first label that matches any
// line wins. Each pattern requires a separator after the label so transaction
// rows are not mistaken for labeled fields.
var (
	accountHolderLabels  = compileLabels("account holder", "customer name", "account name")
	accountNumberLabels  = compileLabels("account number", "account no", "a/c no")
	bankNameLabels       = compileLabels("bank name", "bank")
	ifscLabels           = compileLabels("ifsc code", "ifsc")
	branchLabels         = compileLabels("branch")
	openingBalanceLabels = compileLabels("opening balance", "balance brought forward")
)

func compileLabels(labels ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(labels))
	for i, label := range labels {
		patterns[i] = regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(label) + `\s*[:\-]\s*(.+)$`)
	}
	return patterns
}

// transactionRow anchors a transaction line: a leading ISO date followed by
// free text. Lines not matching this shape are not transaction rows and are
// silently skipped; multi-line entries and non-ISO dates are undetectable in
// offline mode.
var transactionRow = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(.+)$`)

// numericToken matches an amount token, allowing a currency symbol prefix
// and thousands separators.
var numericToken = regexp.MustCompile(`^[₹$€£]?[\d,]+(?:\.\d+)?$`)

// OfflineExtractor parses raw statement text with regex heuristics. It is
// stateless and safe for concurrent use.
type OfflineExtractor struct{}

// NewOfflineExtractor returns the heuristic fallback extractor.
func NewOfflineExtractor() *OfflineExtractor {
	return &OfflineExtractor{}
}

// Name returns the extractor identifier.
func (e *OfflineExtractor) Name() string { return "offline" }

// Extract builds a statement from newline-delimited raw text. The returned
// error is always nil; it exists to satisfy the Extractor interface.
func (e *OfflineExtractor) Extract(ctx context.Context, rawText string) (*domain.Statement, error) {
	lines := strings.Split(rawText, "\n")

	st := &domain.Statement{
		Header: domain.Header{
			AccountHolder: findLabeled(lines, accountHolderLabels, DefaultAccountHolder),
			AccountNumber: findLabeled(lines, accountNumberLabels, DefaultAccountNumber),
			BankName:      findLabeled(lines, bankNameLabels, DefaultBankName),
			IFSC:          findLabeled(lines, ifscLabels, ""),
			Branch:        findLabeled(lines, branchLabels, ""),
		},
		OpeningBalance: ParseAmount(findLabeled(lines, openingBalanceLabels, "")),
	}

	st.Transactions = extractRows(lines, st.OpeningBalance)
	if len(st.Transactions) == 0 {
		st.Transactions = []domain.Transaction{
			domain.NewTransaction(civil.DateOf(time.Now()), PlaceholderDescription, 0, 0),
		}
	}

	// With no labeled opening balance, derive it from the first row so a
	// later recalculation reproduces the captured balances.
	if st.OpeningBalance == 0 {
		first := st.Transactions[0]
		st.OpeningBalance = domain.Round2(first.Balance - first.Credit + first.Debit)
	}

	return st, nil
}

// findLabeled scans every non-empty line against the ordered label patterns
// and returns the captured text after the first matching label, or the
// fallback when nothing matches.
func findLabeled(lines []string, labels []*regexp.Regexp, fallback string) string {
	for _, label := range labels {
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if m := label.FindStringSubmatch(line); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return fallback
}

// extractRows parses transaction lines and backfills missing balances with a
// running total seeded from the opening balance. A captured balance resets
// the running total: the source value is trusted over the computed one.
func extractRows(lines []string, openingBalance float64) []domain.Transaction {
	var txns []domain.Transaction
	running := openingBalance

	for _, line := range lines {
		m := transactionRow.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		date, err := civil.ParseDate(m[1])
		if err != nil {
			continue
		}

		description, amounts := splitTrailingAmounts(m[2])
		credit, debit := disambiguateAmounts(amounts)

		txn := domain.NewTransaction(date, description, credit, debit)
		if len(amounts) == 3 {
			running = ParseAmount(amounts[2])
		} else {
			running += txn.Credit - txn.Debit
		}
		txn.SetBalance(running)

		txns = append(txns, txn)
	}

	return txns
}

// splitTrailingAmounts peels up to three trailing numeric tokens off a row
// remainder. The remainder before the tokens is the description.
func splitTrailingAmounts(rest string) (string, []string) {
	fields := strings.Fields(rest)

	var amounts []string
	for len(fields) > 0 && len(amounts) < 3 {
		last := fields[len(fields)-1]
		if !numericToken.MatchString(last) {
			break
		}
		amounts = append([]string{last}, amounts...)
		fields = fields[:len(fields)-1]
	}

	description := strings.Join(fields, " ")
	if description == "" {
		description = "Transaction"
	}
	return description, amounts
}

// disambiguateAmounts assigns the first two trailing tokens to credit and
// debit. When only one side is present or non-zero it wins; when both are
// non-zero the source column order is assumed to be credit-then-debit.
func disambiguateAmounts(amounts []string) (credit, debit float64) {
	var first, second float64
	if len(amounts) > 0 {
		first = ParseAmount(amounts[0])
	}
	if len(amounts) > 1 {
		second = ParseAmount(amounts[1])
	}

	switch {
	case first > 0 && second == 0:
		return first, 0
	case second > 0 && first == 0:
		return 0, second
	case first > 0 && second > 0:
		return first, second
	default:
		return 0, 0
	}
}

// amountCleaner keeps digits and decimal points, dropping currency symbols,
// thousands separators and whitespace.
var amountCleaner = regexp.MustCompile(`[^0-9.]`)

// ParseAmount parses a currency string to a float rounded to 2 decimals.
// Unparsable input yields 0.0, never an error.
func ParseAmount(s string) float64 {
	clean := amountCleaner.ReplaceAllString(s, "")
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return domain.Round2(v)
}
