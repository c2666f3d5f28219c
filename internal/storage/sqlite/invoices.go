package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"praktyka/internal/models"
)

// CreateInvoice inserts the local record of an externally issued
// invoice. Invoices have no update or delete path.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.CreatedAt = nowUnix()

	query := `
		INSERT INTO invoices (id, fakturownia_id, number, sell_date, price_gross, employer_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID,
		inv.FakturowniaID,
		inv.Number,
		inv.SellDate.String(),
		inv.PriceGross.String(),
		inv.EmployerID,
		inv.UserID,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// ListInvoices returns the caller's invoices newest first, with
// employer names resolved. An empty employerID lists all of them.
func (s *SQLiteStore) ListInvoices(ctx context.Context, userID, employerID string) ([]models.Invoice, error) {
	query := `
		SELECT i.id, i.fakturownia_id, i.number, i.sell_date, i.price_gross,
		       i.employer_id, COALESCE(e.name, ''), i.user_id, i.created_at
		FROM invoices i
		LEFT JOIN employers e ON e.id = i.employer_id
		WHERE i.user_id = ?
	`
	args := []any{userID}

	if employerID != "" {
		query += ` AND i.employer_id = ?`
		args = append(args, employerID)
	}

	query += ` ORDER BY i.sell_date DESC, i.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv := models.Invoice{}
		var sellDate, price string
		if err := rows.Scan(
			&inv.ID,
			&inv.FakturowniaID,
			&inv.Number,
			&sellDate,
			&price,
			&inv.EmployerID,
			&inv.EmployerName,
			&inv.UserID,
			&inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		if inv.SellDate, err = models.ParseDate(sellDate); err != nil {
			return nil, err
		}
		if inv.PriceGross, err = parseDecimal(price); err != nil {
			return nil, err
		}

		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}
