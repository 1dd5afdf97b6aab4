package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueAndValidate(t *testing.T) {
	service := NewJWTService(Config{SecretKey: "test-secret"})

	token, err := service.IssueToken("toko-sepatu")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if claims.Merchant != "toko-sepatu" {
		t.Errorf("expected merchant toko-sepatu, got %s", claims.Merchant)
	}

	if claims.Issuer != "topic-miner" {
		t.Errorf("expected issuer topic-miner, got %s", claims.Issuer)
	}
}

func TestJWTService_IssueTokenRequiresMerchant(t *testing.T) {
	service := NewJWTService(Config{SecretKey: "test-secret"})

	if _, err := service.IssueToken("  "); err != ErrMissingMerchant {
		t.Errorf("expected ErrMissingMerchant, got %v", err)
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService(Config{SecretKey: "one"}).IssueToken("toko")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := NewJWTService(Config{SecretKey: "two"}).ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	service := NewJWTService(Config{SecretKey: "test-secret", TokenDuration: time.Hour})
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := service.IssueToken("toko")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	service.now = time.Now
	if _, err := service.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTService_RejectsTokenWithoutMerchant(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "topic-miner",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := NewJWTService(Config{SecretKey: "test-secret"}).ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	service := NewJWTService(Config{SecretKey: "test-secret"})
	token, err := service.IssueToken("toko-sepatu")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var merchant string
	handler := Middleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			t.Error("expected claims in context")
			return
		}
		merchant = claims.Merchant
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}

	if merchant != "toko-sepatu" {
		t.Errorf("expected merchant toko-sepatu, got %s", merchant)
	}
}
