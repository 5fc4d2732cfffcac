package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/alswp006/blog-writer/internal/util"
)

// CookieName is the cookie that carries the session token.
const CookieName = "session_token"

const issuerName = "blog-writer"

type Claims struct {
	UserID    string
	JTI       string
	ExpiresAt time.Time
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Issuer signs session tokens with a server-held HMAC secret. A token encodes
// the user id, so resolving it needs no lookup, and it cannot be minted for an
// arbitrary user without the secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(userID string) (string, Claims, error) {
	if strings.TrimSpace(userID) == "" {
		return "", Claims{}, errors.New("user id is required")
	}
	now := i.now()
	claims := Claims{
		UserID:    userID,
		JTI:       util.NewID(""),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   claims.UserID,
		ID:        claims.JTI,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Resolve verifies the signature and expiry of token and returns its claims.
func (i *Issuer) Resolve(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	registered := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &registered, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid || registered.Subject == "" || registered.ID == "" || registered.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		UserID:    registered.Subject,
		JTI:       registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}
