package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Employer is a clinic or hospital the user performs work for.
// DefaultPercent is the revenue share pre-filled on new transactions.
type Employer struct {
	// ID is the unique identifier for the employer (UUID format).
	ID string `json:"id"`

	Name string `json:"name"`

	// NIP is the employer's 10-digit tax identifier. Uniqueness per
	// owning user is enforced by lookup in the sync flow, not by a
	// stored constraint.
	NIP string `json:"nip"`

	// REGON is optional for employers, unlike on User.
	REGON string `json:"regon,omitempty"`

	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber,omitempty"`

	// DefaultPercent is the revenue-share percent (0-100) applied to
	// transactions created without an explicit override.
	DefaultPercent decimal.Decimal `json:"defaultPercent"`

	// FakturowniaID links this employer to a client record in the
	// external invoicing service. Empty until synced.
	FakturowniaID string `json:"fakturownia_id,omitempty"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Validate reports every invalid field on the employer record.
func (e *Employer) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if !validNIP(e.NIP) {
		errs = append(errs, FieldError{Field: "nip", Message: "NIP must be 10 digits"})
	}
	if e.REGON != "" && !validREGON(e.REGON) {
		errs = append(errs, FieldError{Field: "regon", Message: "REGON must be 9 digits"})
	}
	if strings.TrimSpace(e.City) == "" {
		errs = append(errs, FieldError{Field: "city", Message: "city is required"})
	}
	if strings.TrimSpace(e.Street) == "" {
		errs = append(errs, FieldError{Field: "street", Message: "street is required"})
	}
	if err := validatePercent(e.DefaultPercent); err != "" {
		errs = append(errs, FieldError{Field: "defaultPercent", Message: err})
	}
	return errs.OrNil()
}

func validatePercent(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "percent cannot be negative"
	case p.GreaterThan(decimal.NewFromInt(100)):
		return "percent cannot exceed 100"
	}
	return ""
}
