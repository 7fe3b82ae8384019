package apiclient

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"storefront-client/internal/domain"
)

type stubStore struct {
	session     domain.Session
	hasSession  bool
	sessionErr  error
	clearCalled bool
}

func (s *stubStore) Session() (domain.Session, bool, error) {
	return s.session, s.hasSession, s.sessionErr
}

func (s *stubStore) ClearSession() error {
	s.clearCalled = true
	s.hasSession = false
	return nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", 0)
}

func TestDoAttachesTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	store := &stubStore{
		session:    domain.Session{Token: "tok123", ClientID: 7, ExpiresAt: time.Now().Add(time.Hour)},
		hasSession: true,
	}
	c := New(srv.URL, store, testLogger())

	if _, err := c.Do(context.Background(), "GET", "/api/7/panier/", nil, true); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Token tok123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Token tok123")
	}
}

func TestDoWithoutSessionFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, &stubStore{}, testLogger())
	_, err := c.Do(context.Background(), "GET", "/api/7/panier/", nil, true)
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if called {
		t.Error("request reached the server despite missing session")
	}
}

func TestDo401TearsDownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"session expirée"}`))
	}))
	defer srv.Close()

	store := &stubStore{
		session:    domain.Session{Token: "stale", ClientID: 7},
		hasSession: true,
	}
	hookCalled := false
	c := New(srv.URL, store, testLogger(), WithSessionExpiredHook(func() { hookCalled = true }))

	_, err := c.Do(context.Background(), "GET", "/api/7/panier/", nil, true)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !store.clearCalled {
		t.Error("session was not cleared after 401")
	}
	if !hookCalled {
		t.Error("expired hook was not invoked")
	}
	if !strings.Contains(err.Error(), "session a expiré") {
		t.Errorf("err message %q does not mention the expired session", err.Error())
	}
}

func TestDoParsesStructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"stock insuffisant","details":[{"produit":"Bière blonde artisanale","quantite_commandee":5,"stock_disponible":2}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubStore{}, testLogger())
	_, err := c.Do(context.Background(), "POST", "/api/commandes/", map[string]int{"panier_id": 1}, false)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *domain.APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "stock insuffisant" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if len(apiErr.Details) != 1 {
		t.Fatalf("Details count = %d, want 1", len(apiErr.Details))
	}
	d := apiErr.Details[0]
	if d.Produit != "Bière blonde artisanale" || d.QuantiteCommandee != 5 || d.StockDisponible != 2 {
		t.Errorf("unexpected detail: %+v", d)
	}
}

func TestDoPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubStore{}, testLogger())
	_, err := c.Do(context.Background(), "GET", "/api/magasin", nil, false)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *domain.APIError", err)
	}
	if apiErr.Message != "boom" {
		t.Errorf("Message = %q, want raw body", apiErr.Message)
	}
}

func TestDoNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, &stubStore{}, testLogger())
	raw, err := c.Do(context.Background(), "DELETE", "/api/7/panier/1/", nil, false)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if raw != nil {
		t.Errorf("raw = %s, want nil on 204", raw)
	}
}

func TestDoRejectsNonJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubStore{}, testLogger())
	if _, err := c.Do(context.Background(), "GET", "/api/magasin", nil, false); err == nil {
		t.Fatal("expected error on non-JSON success body")
	}
}
