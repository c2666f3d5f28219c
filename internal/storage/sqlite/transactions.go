package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"praktyka/internal/calculator"
	"praktyka/internal/models"
	"praktyka/internal/storage"
)

// CreateTransaction inserts a new transaction owned by tx.UserID.
// The employer reference is written once here and never updated.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := nowUnix()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `
		INSERT INTO transactions (id, date, amount, percent, patient_name, description, employer_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.Date.String(),
		tx.Amount.String(),
		tx.Percent.String(),
		tx.PatientName,
		tx.Description,
		tx.EmployerID,
		tx.UserID,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

const transactionSelect = `
	SELECT t.id, t.date, t.amount, t.percent, t.patient_name, t.description,
	       t.employer_id, COALESCE(e.name, ''), t.user_id, t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN employers e ON e.id = t.employer_id
`

// GetTransaction retrieves one transaction owned by userID, with the
// employer name resolved.
func (s *SQLiteStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	query := transactionSelect + ` WHERE t.id = ? AND t.user_id = ?`

	row := s.db.QueryRowContext(ctx, query, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions returns the caller's transactions newest-date-first.
// The month/year filter selects dates within the calendar month
// inclusive of both boundary days; it only applies when both are set.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, filter storage.TransactionFilter) ([]models.Transaction, error) {
	query := transactionSelect + ` WHERE t.user_id = ?`
	args := []any{userID}

	if filter.EmployerID != "" {
		query += ` AND t.employer_id = ?`
		args = append(args, filter.EmployerID)
	}
	if filter.Month != 0 && filter.Year != 0 {
		first, last := calculator.MonthRange(filter.Year, filter.Month)
		// Dates are stored as YYYY-MM-DD, so lexicographic comparison
		// matches chronological order.
		query += ` AND t.date >= ? AND t.date <= ?`
		args = append(args, first.String(), last.String())
	}

	query += ` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransaction rewrites the mutable fields of a transaction owned
// by tx.UserID. The employer reference stays as created.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = nowUnix()

	query := `
		UPDATE transactions
		SET date = ?, amount = ?, percent = ?, patient_name = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Date.String(),
		tx.Amount.String(),
		tx.Percent.String(),
		tx.PatientName,
		tx.Description,
		tx.UpdatedAt,
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteTransaction removes a transaction owned by userID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var date, amount, percent string
	err := row.Scan(
		&tx.ID,
		&date,
		&amount,
		&percent,
		&tx.PatientName,
		&tx.Description,
		&tx.EmployerID,
		&tx.EmployerName,
		&tx.UserID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = models.ParseDate(date); err != nil {
		return nil, err
	}
	if tx.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if tx.Percent, err = parseDecimal(percent); err != nil {
		return nil, err
	}

	return tx, nil
}
