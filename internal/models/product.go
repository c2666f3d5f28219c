package models

import "strings"

// Product is a named template line item for invoice creation.
// Products are not linked to transactions.
type Product struct {
	// ID is the unique identifier for the product (UUID format).
	ID string `json:"id"`

	Name string `json:"name"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	CreatedAt int64 `json:"createdAt"`
}

// Validate reports every invalid field on the product record.
func (p *Product) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	return errs.OrNil()
}
