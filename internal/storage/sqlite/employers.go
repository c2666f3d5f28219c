package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"praktyka/internal/models"
	"praktyka/internal/storage"
)

const employerColumns = `id, name, nip, regon, city, street, building_number, default_percent, fakturownia_id, user_id, created_at, updated_at`

// CreateEmployer inserts a new employer owned by employer.UserID.
func (s *SQLiteStore) CreateEmployer(ctx context.Context, employer *models.Employer) error {
	if employer.ID == "" {
		employer.ID = uuid.New().String()
	}
	now := nowUnix()
	employer.CreatedAt = now
	employer.UpdatedAt = now

	query := `
		INSERT INTO employers (` + employerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		employer.ID,
		employer.Name,
		employer.NIP,
		employer.REGON,
		employer.City,
		employer.Street,
		employer.BuildingNumber,
		employer.DefaultPercent.String(),
		employer.FakturowniaID,
		employer.UserID,
		employer.CreatedAt,
		employer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create employer: %w", err)
	}

	return nil
}

// GetEmployer retrieves one employer owned by userID.
func (s *SQLiteStore) GetEmployer(ctx context.Context, userID, id string) (*models.Employer, error) {
	return s.getEmployer(ctx, "id = ? AND user_id = ?", id, userID)
}

// GetEmployerByNIP retrieves the caller's employer with the given tax
// id. The sync flow uses this lookup to decide update vs. create.
func (s *SQLiteStore) GetEmployerByNIP(ctx context.Context, userID, nip string) (*models.Employer, error) {
	return s.getEmployer(ctx, "nip = ? AND user_id = ?", nip, userID)
}

func (s *SQLiteStore) getEmployer(ctx context.Context, where string, args ...any) (*models.Employer, error) {
	query := `SELECT ` + employerColumns + ` FROM employers WHERE ` + where

	row := s.db.QueryRowContext(ctx, query, args...)
	employer, err := scanEmployer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employer: %w", err)
	}

	return employer, nil
}

// ListEmployers returns all employers owned by userID, oldest first.
func (s *SQLiteStore) ListEmployers(ctx context.Context, userID string) ([]models.Employer, error) {
	query := `SELECT ` + employerColumns + ` FROM employers WHERE user_id = ? ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employers: %w", err)
	}
	defer rows.Close()

	var employers []models.Employer
	for rows.Next() {
		employer, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employer: %w", err)
		}
		employers = append(employers, *employer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employers: %w", err)
	}

	return employers, nil
}

// UpdateEmployer rewrites the mutable fields of an employer owned by
// employer.UserID.
func (s *SQLiteStore) UpdateEmployer(ctx context.Context, employer *models.Employer) error {
	employer.UpdatedAt = nowUnix()

	query := `
		UPDATE employers
		SET name = ?, nip = ?, regon = ?, city = ?, street = ?, building_number = ?, default_percent = ?, fakturownia_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		employer.Name,
		employer.NIP,
		employer.REGON,
		employer.City,
		employer.Street,
		employer.BuildingNumber,
		employer.DefaultPercent.String(),
		employer.FakturowniaID,
		employer.UpdatedAt,
		employer.ID,
		employer.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employer: %w", err)
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

// DeleteEmployer removes an employer owned by userID. Deletion is
// forbidden while transactions or invoices still reference the
// employer, so those records can never be orphaned.
func (s *SQLiteStore) DeleteEmployer(ctx context.Context, userID, id string) error {
	txCount, err := s.countWhere(ctx, `SELECT COUNT(*) FROM transactions WHERE employer_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to count dependent transactions: %w", err)
	}
	invCount, err := s.countWhere(ctx, `SELECT COUNT(*) FROM invoices WHERE employer_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to count dependent invoices: %w", err)
	}
	if txCount > 0 || invCount > 0 {
		return fmt.Errorf("employer has %d transactions and %d invoices: %w", txCount, invCount, storage.ErrReferenced)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM employers WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete employer: %w", err)
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

// scanEmployer reads one employer row from either *sql.Row or *sql.Rows.
func scanEmployer(row interface{ Scan(...any) error }) (*models.Employer, error) {
	employer := &models.Employer{}
	var percent string
	err := row.Scan(
		&employer.ID,
		&employer.Name,
		&employer.NIP,
		&employer.REGON,
		&employer.City,
		&employer.Street,
		&employer.BuildingNumber,
		&percent,
		&employer.FakturowniaID,
		&employer.UserID,
		&employer.CreatedAt,
		&employer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	employer.DefaultPercent, err = parseDecimal(percent)
	if err != nil {
		return nil, err
	}

	return employer, nil
}
