package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marathon-readiness/toolkit/internal/common"
	appctx "marathon-readiness/toolkit/internal/context"
)

func authedEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	tokens := common.NewTokenService("test-secret", time.Hour)
	h := AuthMiddleware(tokens, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appctx.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	tokens := common.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Issue("runner-7")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	h, seen := authedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != "runner-7" {
		t.Errorf("expected user id runner-7 in context, got %q", *seen)
	}
}

func TestAuthMiddleware_InvalidBearerRejected(t *testing.T) {
	h, _ := authedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingCredentialsRejected(t *testing.T) {
	h, _ := authedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_APIKeyWithoutRepoRejected(t *testing.T) {
	h, _ := authedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "some-key")
	req.Header.Set("X-User-Id", "runner-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when no keys repo configured, got %d", rec.Code)
	}
}
