package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/aethra/haven/internal/config"
	"github.com/aethra/haven/internal/models"
)

func testAdmin() models.Admin {
	return models.Admin{Base: models.Base{ID: "admin-1"}, Email: "owner@example.com", FullName: "Owner"}
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewJWTService(config.AuthConfig{JWTSecret: "test-secret", AccessExpiry: 1})

	token, err := svc.Issue(testAdmin())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token.TokenType != "Bearer" {
		t.Errorf("Expected Bearer, got %s", token.TokenType)
	}
	if d := time.Until(token.ExpiresAt); d < 59*time.Minute || d > time.Hour {
		t.Errorf("Expected an hour of validity, got %v", d)
	}

	claims, err := svc.ValidateToken(token.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.AdminID != "admin-1" || claims.Email != "owner@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsForeignAndTampered(t *testing.T) {
	svc := NewJWTService(config.AuthConfig{JWTSecret: "test-secret"})
	other := NewJWTService(config.AuthConfig{JWTSecret: "other-secret"})

	token, _ := other.Issue(testAdmin())
	if _, err := svc.ValidateToken(token.AccessToken); err == nil {
		t.Error("Expected a token signed with another secret to be rejected")
	}

	token, _ = svc.Issue(testAdmin())
	parts := strings.Split(token.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := svc.ValidateToken(tampered); err == nil {
		t.Error("Expected a tampered token to be rejected")
	}

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("Expected garbage to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Error("Expected password to be hashed")
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("Expected password to match")
	}
	if CheckPassword("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestLoginLimiterBlocksAfterMaxAttempts(t *testing.T) {
	l := NewLoginLimiter(config.AuthConfig{MaxLoginAttempts: 3, LoginWindowMins: 5, LoginBlockMins: 15})
	defer l.Stop()
	key := Key("10.0.0.1", " Owner@Example.com ")

	if key != "10.0.0.1|owner@example.com" {
		t.Errorf("Expected normalized key, got %q", key)
	}

	for i, want := range []int{2, 1} {
		if ok, _ := l.Allow(key); !ok {
			t.Fatalf("Attempt %d: expected to be allowed", i+1)
		}
		if left := l.Fail(key); left != want {
			t.Errorf("Attempt %d: expected %d left, got %d", i+1, want, left)
		}
	}

	if left := l.Fail(key); left != 0 {
		t.Errorf("Expected 0 left, got %d", left)
	}
	ok, wait := l.Allow(key)
	if ok {
		t.Fatal("Expected key to be blocked")
	}
	if wait <= 14*time.Minute {
		t.Errorf("Expected about 15 minutes of block, got %v", wait)
	}

	if ok, _ := l.Allow(Key("10.0.0.2", "owner@example.com")); !ok {
		t.Error("Expected another IP to be unaffected")
	}

	l.Reset(key)
	if ok, _ := l.Allow(key); !ok {
		t.Error("Expected reset key to be allowed")
	}
}
