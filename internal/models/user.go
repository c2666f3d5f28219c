package models

import "strings"

// User is a registered account: the practitioner's own seller identity
// plus the credentials for the external invoicing service. The same
// record doubles as the "profile" the invoice issuance flow reads.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is unique system-wide and used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the client-side SHA-256
	// password digest. Never serialized.
	PasswordHash string `json:"-"`

	// Name is the seller name printed on issued invoices.
	Name string `json:"name"`

	// NIP is the 10-digit tax identifier, unique system-wide.
	NIP string `json:"nip"`

	// REGON is the 9-digit statistical number, unique system-wide.
	REGON string `json:"regon"`

	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber"`

	// APIToken and Domain are the external invoicing service
	// credentials. Optional until the user connects their account.
	APIToken string `json:"apiToken,omitempty"`
	Domain   string `json:"domain,omitempty"`

	// CreatedAt / UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Validate reports every invalid field on the user record.
func (u *User) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if !validNIP(u.NIP) {
		errs = append(errs, FieldError{Field: "nip", Message: "NIP must be 10 digits"})
	}
	if !validREGON(u.REGON) {
		errs = append(errs, FieldError{Field: "regon", Message: "REGON must be 9 digits"})
	}
	if strings.TrimSpace(u.City) == "" {
		errs = append(errs, FieldError{Field: "city", Message: "city is required"})
	}
	if strings.TrimSpace(u.Street) == "" {
		errs = append(errs, FieldError{Field: "street", Message: "street is required"})
	}
	if strings.TrimSpace(u.BuildingNumber) == "" {
		errs = append(errs, FieldError{Field: "buildingNumber", Message: "building number is required"})
	}
	return errs.OrNil()
}

// HasInvoicingCredentials reports whether the external invoicing
// service can be called on behalf of this user.
func (u *User) HasInvoicingCredentials() bool {
	return u.APIToken != "" && u.Domain != ""
}
