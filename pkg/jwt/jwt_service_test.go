package jwt

import (
	"errors"
	"testing"
	"time"

	"nutriplan/domain"
)

func TestGenerateAndResolveToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresAt, err := svc.GenerateToken("424242")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %s", expiresAt)
	}

	id, err := svc.GetTelegramIDByToken(token)
	if err != nil {
		t.Fatalf("GetTelegramIDByToken() error = %v", err)
	}
	if id != 424242 {
		t.Fatalf("expected telegram id 424242, got %d", id)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc := NewJWTService("test-secret").(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, _, err := svc.GenerateToken("1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := svc.GetTelegramIDByToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestForeignSecretIsRejected(t *testing.T) {
	token, _, err := NewJWTService("one").GenerateToken("1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := NewJWTService("two").GetTelegramIDByToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
