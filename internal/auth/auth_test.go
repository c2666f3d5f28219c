package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"praktyka/internal/models"
	"praktyka/internal/storage"
)

// memoryUserStore is an in-memory UserStorage for authenticator tests.
type memoryUserStore struct {
	byEmail map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserStore) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return storage.ErrDuplicate
	}
	user.ID = "user-" + user.Email
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func digestOf(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("register then authenticate round-trip", func(t *testing.T) {
		authn := NewPasswordAuthenticator(newMemoryUserStore())
		digest := digestOf("correct horse battery staple")

		created, err := authn.Register(ctx, &models.User{Email: "jan@example.com"}, digest)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if created.PasswordHash == digest {
			t.Error("Credential stored without hashing")
		}

		user, err := authn.Authenticate(ctx, "jan@example.com", digest)
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.ID != created.ID {
			t.Errorf("Authenticated as %s, want %s", user.ID, created.ID)
		}
	})

	t.Run("wrong digest is rejected", func(t *testing.T) {
		authn := NewPasswordAuthenticator(newMemoryUserStore())
		if _, err := authn.Register(ctx, &models.User{Email: "jan@example.com"}, digestOf("right")); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		_, err := authn.Authenticate(ctx, "jan@example.com", digestOf("wrong"))
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email is rejected identically", func(t *testing.T) {
		authn := NewPasswordAuthenticator(newMemoryUserStore())
		_, err := authn.Authenticate(ctx, "nobody@example.com", digestOf("anything"))
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("duplicate email is rejected before hashing", func(t *testing.T) {
		authn := NewPasswordAuthenticator(newMemoryUserStore())
		if _, err := authn.Register(ctx, &models.User{Email: "jan@example.com"}, digestOf("one")); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		_, err := authn.Register(ctx, &models.User{Email: "jan@example.com"}, digestOf("two"))
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("malformed digest is rejected", func(t *testing.T) {
		authn := NewPasswordAuthenticator(newMemoryUserStore())
		for _, digest := range []string{"", "plaintext password", digestOf("x")[:63], digestOf("x") + "0"} {
			if _, err := authn.Register(ctx, &models.User{Email: "jan@example.com"}, digest); !errors.Is(err, ErrInvalidDigest) {
				t.Errorf("digest %q: expected ErrInvalidDigest, got %v", digest, err)
			}
		}
	})
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "jan@example.com"}

	t.Run("generate and validate round-trip", func(t *testing.T) {
		manager := NewJWTManager("test-secret", time.Hour)

		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != user.ID || claims.Email != user.Email {
			t.Errorf("Claims = %+v, want user-1/jan@example.com", claims)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		manager := NewJWTManager("test-secret", -time.Minute)

		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token, err := NewJWTManager("secret-a", time.Hour).Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := NewJWTManager("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		manager := NewJWTManager("test-secret", time.Hour)
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
