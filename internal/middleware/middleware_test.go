package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/ratelimit"
	"planner-backend-go/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAccess struct {
	tokens map[string]string
}

func (s stubAccess) VerifyAccess(token string) (*session.Claims, error) {
	uid, ok := s.tokens[token]
	if !ok {
		return nil, session.ErrInvalidToken
	}
	claims := &session.Claims{Email: uid + "@example.com"}
	claims.Subject = uid
	return claims, nil
}

type stubIDTokens struct{}

func (stubIDTokens) VerifyIDToken(_ context.Context, token string) (*identity.Identity, error) {
	if token == "firebase-token" {
		return &identity.Identity{UID: "fb-user", Email: "fb@example.com", DisplayName: "Fb"}, nil
	}
	return nil, identity.ErrInvalidIDToken
}

func newAuthRouter(idTokens IDTokenVerifier) *gin.Engine {
	m := NewAuthMiddleware(stubAccess{tokens: map[string]string{"jwt-token": "jwt-user"}}, idTokens, zap.NewNop())
	r := gin.New()
	r.GET("/me", m.VerifyToken(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func TestVerifyToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		idTokens IDTokenVerifier
		wantCode int
		wantBody string
		wantMsg  string
	}{
		{"missing header", "", stubIDTokens{}, http.StatusUnauthorized, "", "No token provided"},
		{"wrong scheme", "Basic abc", stubIDTokens{}, http.StatusUnauthorized, "", "No token provided"},
		{"access jwt", "Bearer jwt-token", stubIDTokens{}, http.StatusOK, "jwt-user", ""},
		{"lowercase scheme", "bearer jwt-token", stubIDTokens{}, http.StatusOK, "jwt-user", ""},
		{"firebase id token", "Bearer firebase-token", stubIDTokens{}, http.StatusOK, "fb-user", ""},
		{"firebase disabled", "Bearer firebase-token", nil, http.StatusUnauthorized, "", "Invalid or expired token"},
		{"garbage", "Bearer nope", stubIDTokens{}, http.StatusUnauthorized, "", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.idTokens)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				if w.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
				}
				return
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != "error" || resp.Message != tt.wantMsg {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Errorf("generated id = %q, body = %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("propagated id = %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Internal server error" {
		t.Errorf("message = %q", resp.Message)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), AuthLimitMessage, zap.NewNop()))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}
	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, w.Code)
		}
	}
	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("RateLimit-Limit") != "2" || w.Header().Get("RateLimit-Remaining") != "0" {
		t.Errorf("headers = %v", w.Header())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != AuthLimitMessage {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(failingLimiter{}, APILimitMessage, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
