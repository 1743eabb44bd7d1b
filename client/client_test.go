package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NeurArk/ai-contract-guardian/config"
)

func testConfig(baseURL string) *config.APIConfig {
	return &config.APIConfig{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  10 * time.Millisecond,
	}
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]string{"id": "u1"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	c.SetTokenSource(func() string { return "token-abc" })

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestClientNoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"id": "u1"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	c.SetTokenSource(func() string { return "" })

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Expected no Authorization header, got %q", gotAuth)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "a@b.com"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Errorf("Expected user after retries, got %+v", user)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestClientRetriesAreCapped(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	// 1 initial attempt + 3 retries.
	if got := attempts.Load(); got != 4 {
		t.Errorf("Expected 4 attempts, got %d", got)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "This email is already registered"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Register(context.Background(), Credentials{Email: "a@b.com", Password: "pw"})
	if err == nil {
		t.Fatal("Expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Detail != "This email is already registered" {
		t.Errorf("Expected backend detail, got %q", apiErr.Detail)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("Expected a single attempt for 4xx, got %d", got)
	}
}

func TestClientUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid or expired token"})
	}))
	defer srv.Close()

	var hookCalls atomic.Int32
	c := New(testConfig(srv.URL))
	c.SetUnauthorizedHandler(func() { hookCalls.Add(1) })

	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if got := hookCalls.Load(); got != 1 {
		t.Errorf("Expected hook to run exactly once, got %d", got)
	}
}

func TestClientNotFoundSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Contract not found"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.GetContract(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClientNetworkErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	c := New(cfg)

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
	if msg := ErrorMessage(err, "fallback"); msg != NetworkErrorMessage {
		t.Errorf("Expected network error message, got %q", msg)
	}
}
