// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"praktyka/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs
	// to a different user. Callers cannot distinguish the two cases.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated
	// (user email, NIP or REGON).
	ErrDuplicate = errors.New("duplicate record")

	// ErrReferenced is returned when a delete is rejected because
	// dependent records still point at the target.
	ErrReferenced = errors.New("record is referenced by other records")
)

// TransactionFilter narrows a transaction listing. Month and Year are
// applied together; a month filter without a year is ignored.
type TransactionFilter struct {
	// EmployerID restricts the listing to one employer when non-empty.
	EmployerID string

	// Month (1-12) and Year select the calendar month; both must be
	// set for the date range to apply.
	Month int
	Year  int
}

// Store defines the persistence operations for all record types.
// Every scoped method filters by the owning user id, so a valid id
// belonging to another user behaves exactly like a missing record.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Employers
	CreateEmployer(ctx context.Context, employer *models.Employer) error
	GetEmployer(ctx context.Context, userID, id string) (*models.Employer, error)
	GetEmployerByNIP(ctx context.Context, userID, nip string) (*models.Employer, error)
	ListEmployers(ctx context.Context, userID string) ([]models.Employer, error)
	UpdateEmployer(ctx context.Context, employer *models.Employer) error
	// DeleteEmployer fails with ErrReferenced while transactions or
	// invoices still point at the employer.
	DeleteEmployer(ctx context.Context, userID, id string) error

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	// ListTransactions returns newest-date-first with employer names
	// resolved.
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	// Invoices (write-once; no update or delete)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	ListInvoices(ctx context.Context, userID, employerID string) ([]models.Invoice, error)

	// Products
	CreateProduct(ctx context.Context, p *models.Product) error
	ListProducts(ctx context.Context, userID string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, userID, id string) error

	// Close releases any resources held by the store.
	Close() error
}
