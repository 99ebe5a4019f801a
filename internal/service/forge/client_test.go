package forge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testForgeConfig(baseURL string) *config.ForgeConfig {
	return &config.ForgeConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BucketKey:    "test-bucket",
		BaseURL:      baseURL,
	}
}

func TestGetTokenV2(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/authentication/v2/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"client_id":  r.PostFormValue("client_id"),
			"grant_type": r.PostFormValue("grant_type"),
			"scope":      r.PostFormValue("scope"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","expires_in":3599,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())

	token, err := client.GetToken(context.Background(), "data:read")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}

	if token.AccessToken != "tok-123" {
		t.Errorf("access token = %q, want tok-123", token.AccessToken)
	}
	if token.Endpoint != "v2" {
		t.Errorf("endpoint = %q, want v2", token.Endpoint)
	}
	if token.ExpiresIn != 3599 {
		t.Errorf("expires_in = %d, want 3599", token.ExpiresIn)
	}
	if gotForm["client_id"] != "client-id" || gotForm["grant_type"] != "client_credentials" {
		t.Errorf("unexpected form values: %v", gotForm)
	}
	if gotForm["scope"] != "data:read" {
		t.Errorf("scope = %q, want data:read", gotForm["scope"])
	}
}

func TestGetTokenFallsBackToV1(t *testing.T) {
	var v2Called, v1Called bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/v2/token":
			v2Called = true
			w.WriteHeader(http.StatusInternalServerError)
		case "/authentication/v1/authenticate":
			v1Called = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"legacy-tok","expires_in":1799}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())

	token, err := client.GetToken(context.Background(), "")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}

	if !v2Called || !v1Called {
		t.Errorf("expected both endpoints tried, v2=%v v1=%v", v2Called, v1Called)
	}
	if token.Endpoint != "v1" {
		t.Errorf("endpoint = %q, want v1", token.Endpoint)
	}
	if token.AccessToken != "legacy-tok" {
		t.Errorf("access token = %q, want legacy-tok", token.AccessToken)
	}
	if token.Scope != DefaultScope {
		t.Errorf("scope = %q, want default %q", token.Scope, DefaultScope)
	}
}

func TestGetTokenBothEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())

	_, err := client.GetToken(context.Background(), "data:read")
	if err == nil {
		t.Fatal("expected error when both endpoints fail")
	}

	var exchangeErr *domain.TokenExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("expected TokenExchangeError, got %T: %v", err, err)
	}
	if exchangeErr.V2 == nil || exchangeErr.V1 == nil {
		t.Errorf("aggregate error missing a side: v2=%v v1=%v", exchangeErr.V2, exchangeErr.V1)
	}
}

func TestGetTokenMalformedBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/v2/token":
			w.Write([]byte(`not json`))
		case "/authentication/v1/authenticate":
			w.Write([]byte(`{"access_token":"tok","expires_in":60}`))
		}
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())

	token, err := client.GetToken(context.Background(), "data:read")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Endpoint != "v1" {
		t.Errorf("endpoint = %q, want v1 after malformed v2 body", token.Endpoint)
	}
}

func TestGetTokenMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expires_in":60}`))
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())

	_, err := client.GetToken(context.Background(), "data:read")
	var exchangeErr *domain.TokenExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("expected TokenExchangeError for empty access_token, got %v", err)
	}
}
