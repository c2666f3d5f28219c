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

// CreateUser inserts a new user. Email, NIP and REGON are unique
// system-wide; violations surface as storage.ErrDuplicate.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := nowUnix()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, name, nip, regon, city, street, building_number, api_token, domain, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.NIP,
		user.REGON,
		user.City,
		user.Street,
		user.BuildingNumber,
		user.APIToken,
		user.Domain,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user already exists: %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, name, nip, regon, city, street, building_number, api_token, domain, created_at, updated_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.NIP,
		&user.REGON,
		&user.City,
		&user.Street,
		&user.BuildingNumber,
		&user.APIToken,
		&user.Domain,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateUser rewrites the profile fields of an existing user. The
// password hash is never touched here.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = nowUnix()

	query := `
		UPDATE users
		SET email = ?, name = ?, nip = ?, regon = ?, city = ?, street = ?, building_number = ?, api_token = ?, domain = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.NIP,
		user.REGON,
		user.City,
		user.Street,
		user.BuildingNumber,
		user.APIToken,
		user.Domain,
		user.UpdatedAt,
		user.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user fields conflict: %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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
