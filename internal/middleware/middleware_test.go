package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/technosupport/live-urlgen/internal/middleware"
	"github.com/technosupport/live-urlgen/internal/tokens"
)

// Mock Token Validator
type MockTokenValidator struct{}

func (m MockTokenValidator) ValidateToken(token string) (*tokens.Claims, error) {
	if token == "valid-operator" {
		c := &tokens.Claims{Operator: "ops", Scope: tokens.ScopeGenerate}
		c.ID = "jti-1"
		return c, nil
	}
	return nil, tokens.ErrInvalidToken
}

func TestJWTAuth(t *testing.T) {
	auth := middleware.NewJWTAuth(MockTokenValidator{})

	var seen *middleware.OperatorContext
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.GetOperatorContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic valid-operator", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer valid-operator", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/generate", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tc.code {
				t.Errorf("Expected %d, got %d", tc.code, w.Code)
			}
		})
	}

	if seen == nil || seen.Operator != "ops" || seen.TokenID != "jti-1" {
		t.Errorf("Expected operator context, got %+v", seen)
	}
}

func TestJWTAuth_RealManager(t *testing.T) {
	mgr := tokens.NewManager("secret")
	tok, err := mgr.GenerateOperatorToken("ops", 0)
	if err != nil {
		t.Fatal(err)
	}

	handler := middleware.NewJWTAuth(mgr).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/generate", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	handler := middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected 418, got %d", w.Code)
	}
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("Expected uuid request id, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/generate", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if called {
		t.Error("preflight should not reach handler")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS origin header")
	}
}
