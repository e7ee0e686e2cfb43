// README: Route authorization tests; auth checks run before any service call.
package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ridenow/internal/auth"
	httptransport "ridenow/internal/http"
)

// stubVerifier is a test double for middleware.TokenVerifier.
type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s *stubVerifier) VerifyToken(string) (*auth.Claims, error) {
	return s.claims, s.err
}

// newTestHandler builds the full route tree with nil services; every request
// in these tests is rejected by middleware before a service is touched.
func newTestHandler(roles ...string) http.Handler {
	verifier := &stubVerifier{claims: &auth.Claims{UserID: "user1", Roles: roles}}
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Verifier: verifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return srv.Routes()
}

func doRequest(h http.Handler, method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestHandler(), http.MethodGet, "/health", false)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	h := newTestHandler("RIDER")
	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/rides/request"},
		{http.MethodGet, "/api/rides/rider"},
		{http.MethodPut, "/api/drivers/location"},
		{http.MethodGet, "/api/wallet"},
		{http.MethodGet, "/api/auth/user"},
	}
	for _, p := range paths {
		w := doRequest(h, p.method, p.path, false)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestRiderRoutesRejectDriverRole(t *testing.T) {
	h := newTestHandler("DRIVER")
	for _, path := range []string{"/api/rides/request"} {
		w := doRequest(h, http.MethodPost, path, true)
		if w.Code != http.StatusForbidden {
			t.Errorf("POST %s: expected 403, got %d", path, w.Code)
		}
	}
}

func TestDriverRoutesRejectRiderRole(t *testing.T) {
	h := newTestHandler("RIDER")
	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/rides/requests/req1/accept"},
		{http.MethodPost, "/api/rides/ride1/start"},
		{http.MethodPost, "/api/rides/ride1/end"},
		{http.MethodPut, "/api/drivers/availability"},
		{http.MethodPut, "/api/drivers/location"},
	}
	for _, tc := range cases {
		w := doRequest(h, tc.method, tc.path, true)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestOnboardDriverRequiresAdmin(t *testing.T) {
	w := doRequest(newTestHandler("RIDER", "DRIVER"), http.MethodPost, "/api/auth/onBoardNewDriver/u1", true)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
