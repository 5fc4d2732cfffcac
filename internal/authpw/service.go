// Package authpw provides email/password accounts.
package authpw

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/alswp006/blog-writer/internal/store"
)

const MinPasswordLen = 6

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries a message safe to show the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

type Service struct {
	store UserStore
	cost  int
	// compared against when the email is unknown so both paths pay for a
	// bcrypt comparison
	dummyHash []byte
}

func NewService(userStore UserStore) *Service {
	return NewServiceWithCost(userStore, bcrypt.DefaultCost)
}

func NewServiceWithCost(userStore UserStore, cost int) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("blog-writer-placeholder"), cost)
	return &Service{store: userStore, cost: cost, dummyHash: dummy}
}

type SignUpRequest struct {
	Email    string
	Password string
	Name     string
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (store.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return store.User{}, &ValidationError{Message: "Email and password are required"}
	}
	if !strings.Contains(email, "@") {
		return store.User{}, &ValidationError{Message: "Email is invalid"}
	}
	if len(req.Password) < MinPasswordLen {
		return store.User{}, &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLen)}
	}
	if len(req.Password) > MaxPasswordBytes {
		return store.User{}, &ValidationError{Message: fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, strings.TrimSpace(req.Name), string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		return store.User{}, ErrEmailInUse
	}
	if err != nil {
		return store.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

type SignInRequest struct {
	Email    string
	Password string
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest) (store.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return store.User{}, &ValidationError{Message: "Email and password are required"}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return store.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return store.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return *user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
