package tokens_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/technosupport/live-urlgen/internal/tokens"
)

func TestTokenGeneration(t *testing.T) {
	mgr := tokens.NewManager("test-secret-key")

	token, err := mgr.GenerateOperatorToken("ops@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.Operator != "ops@example.com" {
		t.Errorf("Expected operator ops@example.com, got %s", claims.Operator)
	}
	if claims.Scope != tokens.ScopeGenerate {
		t.Errorf("Expected scope %s, got %s", tokens.ScopeGenerate, claims.Scope)
	}
	if claims.ID == "" {
		t.Error("Expected jti to be set")
	}
}

func TestInvalidSignature(t *testing.T) {
	mgr1 := tokens.NewManager("secret-1")
	mgr2 := tokens.NewManager("secret-2")

	token, _ := mgr1.GenerateOperatorToken("u1", time.Hour)
	_, err := mgr2.ValidateToken(token)
	if !errors.Is(err, tokens.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	mgr := tokens.NewManager("secret")
	claims := tokens.Claims{
		Operator: "u1",
		Scope:    tokens.ScopeGenerate,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokens.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ValidateToken(signed); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestWrongScope(t *testing.T) {
	mgr := tokens.NewManager("secret")
	claims := tokens.Claims{
		Operator: "u1",
		Scope:    "other",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokens.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := mgr.ValidateToken(signed); !errors.Is(err, tokens.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestDefaultTTL(t *testing.T) {
	mgr := tokens.NewManager("secret")
	token, err := mgr.GenerateOperatorToken("u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != tokens.DefaultTTL {
		t.Errorf("Expected ttl %v, got %v", tokens.DefaultTTL, ttl)
	}
}
