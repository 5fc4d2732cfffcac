package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, secret string) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	return issuer
}

func TestIssueAndResolveToken(t *testing.T) {
	issuer := newTestIssuer(t, "secret")
	token, issued, err := issuer.Issue("usr_1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := issuer.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if claims.UserID != "usr_1" || claims.JTI != issued.JTI || claims.JTI == "" {
		t.Fatalf("unexpected claims: %+v (issued %+v)", claims, issued)
	}
}

func TestResolveRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t, "secret")
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue("usr_1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Resolve(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestResolveRejectsForeignSecret(t *testing.T) {
	attacker := newTestIssuer(t, "attacker-secret")
	forged, _, err := attacker.Issue("usr_victim")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := newTestIssuer(t, "server-secret").Resolve(forged); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestResolveRejectsTamperedPayload(t *testing.T) {
	issuer := newTestIssuer(t, "secret")
	token, _, err := issuer.Issue("usr_1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[0] + "." + parts[2]
	for _, candidate := range []string{"", "garbage", tampered, "a.b.c"} {
		if _, err := issuer.Resolve(candidate); err != ErrInvalidToken {
			t.Fatalf("Resolve(%q) expected ErrInvalidToken, got %v", candidate, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
