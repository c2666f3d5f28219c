package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"praktyka/internal/models"
	"praktyka/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidDigest      = errors.New("password digest must be a SHA-256 hex string")
	ErrEmailExists        = errors.New("email already registered")
)

// digestPattern matches a lowercase or uppercase SHA-256 hex digest.
var digestPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordAuthenticator implements digest-based authentication.
//
// The client never sends a plaintext password; it sends the SHA-256
// hex digest of it. The server treats that digest as the credential
// and stores bcrypt(digest), so a database leak exposes neither the
// password nor a literally comparable credential.
type PasswordAuthenticator struct {
	storage UserStorage
}

// NewPasswordAuthenticator creates a new digest-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks that the credential is a well-formed
// SHA-256 hex digest.
func (a *PasswordAuthenticator) ValidateCredential(digest string) error {
	if !digestPattern.MatchString(digest) {
		return ErrInvalidDigest
	}
	return nil
}

// Register creates the user account with a bcrypt-hashed credential.
// The user record must already be validated; only the credential and
// uniqueness checks happen here.
func (a *PasswordAuthenticator) Register(ctx context.Context, user *models.User, digest string) (*models.User, error) {
	if err := a.ValidateCredential(digest); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(digest), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password digest, returning the
// user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, digest string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(digest)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
