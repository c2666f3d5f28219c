package models

import "github.com/shopspring/decimal"

// Invoice is the local record of an invoice issued through the
// external invoicing service. It is created only after the external
// call succeeds and is never updated or deleted; the external service
// remains the source of truth for the final figures.
type Invoice struct {
	// ID is the unique identifier for the local record (UUID format).
	ID string `json:"id"`

	// FakturowniaID is the invoice id assigned by the external service.
	FakturowniaID string `json:"fakturownia_id"`

	// Number is the invoice number assigned by the external service.
	Number string `json:"number"`

	// SellDate is the sell date reported back by the external service.
	SellDate Date `json:"sellDate"`

	// PriceGross is the gross price reported back by the external
	// service, not the locally computed candidate.
	PriceGross decimal.Decimal `json:"price"`

	// EmployerID is the buyer.
	EmployerID string `json:"employerId"`

	// EmployerName is resolved from the employer on reads.
	EmployerName string `json:"employerName,omitempty"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	CreatedAt int64 `json:"createdAt"`
}
