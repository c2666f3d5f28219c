package models

import "github.com/shopspring/decimal"

// Transaction is one recorded unit of work tied to an employer.
// Its percent is the revenue share for this specific transaction and
// may differ from the employer's default.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// Date is the calendar day the work was performed.
	Date Date `json:"date"`

	// Amount is the gross amount invoiced to the employer.
	Amount decimal.Decimal `json:"amount"`

	// Percent is the revenue share (0-100) the user keeps.
	Percent decimal.Decimal `json:"percent"`

	PatientName string `json:"patientName,omitempty"`
	Description string `json:"description,omitempty"`

	// EmployerID is fixed at creation; updates never reassign it.
	EmployerID string `json:"employerId"`

	// EmployerName is resolved from the employer on reads.
	// It is not stored on the transaction row.
	EmployerName string `json:"employerName,omitempty"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Earnings derives the user's share: amount x percent / 100.
func (t *Transaction) Earnings() decimal.Decimal {
	return t.Amount.Mul(t.Percent).Div(decimal.NewFromInt(100))
}

// Validate reports every invalid field on the transaction record.
func (t *Transaction) Validate() error {
	var errs ValidationErrors
	if t.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "date is required"})
	}
	if t.Amount.IsNegative() {
		errs = append(errs, FieldError{Field: "amount", Message: "amount cannot be negative"})
	}
	if err := validatePercent(t.Percent); err != "" {
		errs = append(errs, FieldError{Field: "percent", Message: err})
	}
	if t.EmployerID == "" {
		errs = append(errs, FieldError{Field: "employerId", Message: "employer is required"})
	}
	return errs.OrNil()
}
