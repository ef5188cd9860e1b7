package domain

import "strings"

// Canonical transaction columns. Source columns outside this set are carried
// through in Statement.ExtraColumns rather than dropped.
var canonicalColumns = map[string]bool{
	"date":        true,
	"description": true,
	"credit":      true,
	"debit":       true,
	"balance":     true,
	"ref":         true,
}

// columnAliases maps common source column labels onto canonical names.
var columnAliases = map[string]string{
	"particulars": "description",
	"narration":   "description",
	"cheque no":   "ref",
	"chq no":      "ref",
	"reference":   "ref",
	"withdrawal":  "debit",
	"deposit":     "credit",
}

// NormalizeColumnName maps a source column label onto its canonical name.
// The second return is false when the column has no canonical equivalent and
// belongs in ExtraColumns.
func NormalizeColumnName(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonicalColumns[key] {
		return key, true
	}
	if mapped, ok := columnAliases[key]; ok {
		return mapped, true
	}
	return key, false
}

// AbsorbExtraColumns files unmapped source columns into the statement's
// ExtraColumns passthrough, keyed by their normalized label. Columns that map
// onto canonical names are skipped: their values already live on the
// transactions.
func (s *Statement) AbsorbExtraColumns(columns map[string][]any) {
	for name, values := range columns {
		key, canonical := NormalizeColumnName(name)
		if canonical {
			continue
		}
		if s.ExtraColumns == nil {
			s.ExtraColumns = make(map[string][]any)
		}
		s.ExtraColumns[key] = values
	}
}
