package authpw

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alswp006/blog-writer/internal/store"
)

type mockUserStore struct {
	users map[string]store.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]store.User)}
}

func (m *mockUserStore) CreateUser(_ context.Context, email, name, passwordHash string) (store.User, error) {
	if _, ok := m.users[email]; ok {
		return store.User{}, store.ErrEmailTaken
	}
	user := store.User{
		ID:           "usr_" + email,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[email] = user
	return user, nil
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func newTestService() (*Service, *mockUserStore) {
	users := newMockUserStore()
	return NewServiceWithCost(users, bcrypt.MinCost), users
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService()

	t.Run("successful sign up", func(t *testing.T) {
		user, err := svc.SignUp(ctx, SignUpRequest{Email: "  Writer@Example.com ", Password: "secret1", Name: " Ann "})
		if err != nil {
			t.Fatalf("SignUp failed: %v", err)
		}
		if user.Email != "writer@example.com" || user.Name != "Ann" {
			t.Fatalf("unexpected user: %+v", user)
		}
		stored := users.users["writer@example.com"]
		if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
			t.Fatalf("password must be stored hashed")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, SignUpRequest{Email: "writer@example.com", Password: "secret2"})
		if !errors.Is(err, ErrEmailInUse) {
			t.Fatalf("expected ErrEmailInUse, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []SignUpRequest{
			{Email: "", Password: "secret1"},
			{Email: "a@b.c", Password: ""},
			{Email: "a@b.c", Password: "short"},
			{Email: "no-at-sign", Password: "secret1"},
		}
		for _, req := range cases {
			_, err := svc.SignUp(ctx, req)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("SignUp(%+v) expected ValidationError, got %v", req, err)
			}
		}
	})

	t.Run("password over bcrypt limit", func(t *testing.T) {
		long := strings.Repeat("a", MaxPasswordBytes+1)
		_, err := svc.SignUp(ctx, SignUpRequest{Email: "long@example.com", Password: long})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := users.users["long@example.com"]; ok {
			t.Fatal("user must not be created")
		}
	})

	t.Run("password at bcrypt limit", func(t *testing.T) {
		exact := strings.Repeat("a", MaxPasswordBytes)
		if _, err := svc.SignUp(ctx, SignUpRequest{Email: "exact@example.com", Password: exact}); err != nil {
			t.Fatalf("SignUp failed: %v", err)
		}
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "writer@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	t.Run("correct password", func(t *testing.T) {
		user, err := svc.SignIn(ctx, SignInRequest{Email: "WRITER@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
		if user.Email != "writer@example.com" {
			t.Fatalf("unexpected user: %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.SignIn(ctx, SignInRequest{Email: "writer@example.com", Password: "nope123"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.SignIn(ctx, SignInRequest{Email: "ghost@example.com", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		var validation *ValidationError
		if _, err := svc.SignIn(ctx, SignInRequest{Email: "writer@example.com"}); !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}
