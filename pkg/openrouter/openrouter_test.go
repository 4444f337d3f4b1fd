package openrouter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	var gotAuth, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		if r.URL.Path != "/api/v1/models/pastel-model" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pastel-model","object":"model","created":1,"owned_by":"test"}`))
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL + "/api/v1", APIKey: "secret", Model: "pastel-model", SiteName: "pastelaria"}
	if err := Probe(context.Background(), cfg); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotTitle != "pastelaria" {
		t.Fatalf("X-Title header = %q", gotTitle)
	}

	cfg.Model = "missing"
	if err := Probe(context.Background(), cfg); err == nil {
		t.Fatal("Probe() for unknown model must fail")
	}
}

func TestProbeWithoutKey(t *testing.T) {
	t.Parallel()

	if err := Probe(context.Background(), Config{Model: "m"}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("Probe() error = %v, want ErrNoAPIKey", err)
	}
	if NewClient(Config{}) != nil {
		t.Fatal("NewClient without key must return nil")
	}
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := &Config{Model: "m"}
	if _, err := cfg.New(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("New() error = %v, want ErrNoAPIKey", err)
	}
}
