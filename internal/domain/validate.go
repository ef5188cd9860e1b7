package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Validation helpers for edit requests. These checks belong to the API
// boundary, not to the processing core: the sequencer and balance calculator
// assume their inputs were validated here first.

const maxSequencingRangeDays = 3650 // 10 years

var (
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountCleaner = regexp.MustCompile(`[\s\-]`)
)

// ValidateDateRange checks a sequencing window: start must not be after end,
// the end must not be in the future, and the span is capped at 10 years.
func ValidateDateRange(start, end civil.Date) error {
	if !start.IsValid() || !end.IsValid() {
		return fmt.Errorf("start and end must be valid dates")
	}
	if end.Before(start) {
		return fmt.Errorf("start date must be before or equal to end date")
	}
	if civil.DateOf(time.Now()).Before(end) {
		return fmt.Errorf("end date cannot be in the future")
	}
	if end.DaysSince(start) > maxSequencingRangeDays {
		return fmt.Errorf("date range too large (max 10 years)")
	}
	return nil
}

// ValidateAccountNumber checks the account number shape: 9-18 digits after
// stripping spaces and dashes.
func ValidateAccountNumber(accountNumber string) error {
	if accountNumber == "" {
		return fmt.Errorf("account number is required")
	}

	clean := accountCleaner.ReplaceAllString(accountNumber, "")
	if len(clean) < 9 || len(clean) > 18 {
		return fmt.Errorf("account number must be 9-18 digits")
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return fmt.Errorf("account number must contain only digits")
		}
	}
	return nil
}

// ValidateIFSC checks the IFSC shape (4 letters, a zero, 6 alphanumerics).
// An empty IFSC is valid: the field is optional.
func ValidateIFSC(ifsc string) error {
	if ifsc == "" {
		return nil
	}
	if !ifscPattern.MatchString(strings.ToUpper(ifsc)) {
		return fmt.Errorf("invalid IFSC format, expected XXXX0XXXXXX")
	}
	return nil
}

// ValidateMICR checks that a MICR code is exactly 9 digits. An empty MICR is
// valid: the field is optional.
func ValidateMICR(micr string) error {
	if micr == "" {
		return nil
	}

	clean := accountCleaner.ReplaceAllString(micr, "")
	if len(clean) != 9 {
		return fmt.Errorf("MICR code must be 9 digits")
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return fmt.Errorf("MICR code must contain only digits")
		}
	}
	return nil
}

// ValidateTransactionEdit checks one indexed transaction edit: amounts must
// be non-negative and a row must not end up carrying both a credit and a
// debit. The description, when set, must be non-blank and bounded.
func ValidateTransactionEdit(edit TransactionEdit) error {
	if edit.Index < 0 {
		return fmt.Errorf("transaction index must be non-negative")
	}
	if edit.Credit != nil && *edit.Credit < 0 {
		return fmt.Errorf("credit amount cannot be negative")
	}
	if edit.Debit != nil && *edit.Debit < 0 {
		return fmt.Errorf("debit amount cannot be negative")
	}
	if edit.Credit != nil && edit.Debit != nil && *edit.Credit > 0 && *edit.Debit > 0 {
		return fmt.Errorf("transaction cannot have both credit and debit")
	}
	if edit.Description != nil {
		desc := strings.TrimSpace(*edit.Description)
		if desc == "" {
			return fmt.Errorf("description cannot be empty")
		}
		if len(desc) > 500 {
			return fmt.Errorf("description too long (max 500 characters)")
		}
	}
	return nil
}

// ValidateEditRequest runs all applicable checks over one edit request.
func ValidateEditRequest(req *EditRequest) error {
	if req.AccountNumber != "" {
		if err := ValidateAccountNumber(req.AccountNumber); err != nil {
			return err
		}
	}
	if err := ValidateIFSC(req.IFSC); err != nil {
		return err
	}
	if err := ValidateMICR(req.MICR); err != nil {
		return err
	}

	if req.ApplyDateSequencing {
		if req.StartDate == nil || req.EndDate == nil {
			return fmt.Errorf("start and end dates required for date sequencing")
		}
		if err := ValidateDateRange(*req.StartDate, *req.EndDate); err != nil {
			return err
		}
		switch req.Method() {
		case MethodPreserveSpacing, MethodUniform:
		default:
			return fmt.Errorf("unknown date distribution method %q", req.DateDistributionMethod)
		}
	}

	if req.SalaryAmount < 0 {
		return fmt.Errorf("salary amount must be positive")
	}
	if req.SalaryAmount > 0 && req.SalaryDate == nil {
		return fmt.Errorf("salary date required when salary amount is set")
	}

	for _, edit := range req.TransactionEdits {
		if err := ValidateTransactionEdit(edit); err != nil {
			return fmt.Errorf("invalid transaction edit at index %d: %w", edit.Index, err)
		}
	}

	return nil
}
