package domain

import "cloud.google.com/go/civil"

// Date distribution methods accepted by the date sequencer.
const (
	MethodPreserveSpacing = "preserve_spacing"
	MethodUniform         = "uniform"
)

// DefaultSalaryDescription is used when a salary entry is inserted without an
// explicit description.
const DefaultSalaryDescription = "Salary Credit"

// TransactionEdit is one indexed field-level edit against a transaction.
// Nil fields are left untouched. Amount fields are re-rounded on apply.
type TransactionEdit struct {
	Index       int         `json:"index"`
	Date        *civil.Date `json:"date,omitempty"`
	Description *string     `json:"description,omitempty"`
	Credit      *float64    `json:"credit,omitempty"`
	Debit       *float64    `json:"debit,omitempty"`
	Ref         *string     `json:"ref,omitempty"`
}

// EditRequest is the caller's instruction set for one edit pass over a
// statement. Empty header fields mean "leave unchanged".
type EditRequest struct {
	// Header edits
	AccountHolder string `json:"account_holder,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	MICR          string `json:"micr,omitempty"`
	Branch        string `json:"branch,omitempty"`

	// Transaction edits
	TransactionEdits []TransactionEdit `json:"transaction_edits,omitempty"`

	// Date sequencing
	StartDate              *civil.Date `json:"start_date,omitempty"`
	EndDate                *civil.Date `json:"end_date,omitempty"`
	ApplyDateSequencing    bool        `json:"apply_date_sequencing,omitempty"`
	DateDistributionMethod string      `json:"date_distribution_method,omitempty"`

	// Salary entry insertion
	SalaryAmount      float64     `json:"salary_amount,omitempty"`
	SalaryDate        *civil.Date `json:"salary_date,omitempty"`
	SalaryDescription string      `json:"salary_description,omitempty"`
}

// Method returns the requested distribution method, defaulting to
// preserve_spacing.
func (r *EditRequest) Method() string {
	if r.DateDistributionMethod == "" {
		return MethodPreserveSpacing
	}
	return r.DateDistributionMethod
}
