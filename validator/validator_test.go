package validator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidateFormat(t *testing.T) {
	v := New(5 * time.Second)

	tests := []struct {
		name string
		url  string
	}{
		{"not a url", "not-a-valid-url"},
		{"wrong scheme", "ftp://x.com"},
		{"empty", ""},
		{"missing host", "https://"},
		{"localhost blocked", "http://localhost:8080/admin"},
		{"loopback blocked", "http://127.0.0.1/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.url)
			if !errors.Is(err, ErrMalformedURL) {
				t.Errorf("Validate(%q) = %v, want ErrMalformedURL", tt.url, err)
			}
		})
	}
}

func TestValidateReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe used %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(5 * time.Second)
	// httptest binds to 127.0.0.1, which the validator blocks. Probe directly.
	if err := v.probe(context.Background(), srv.URL); err != nil {
		t.Errorf("probe of live server failed: %v", err)
	}
}

func TestValidateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v := New(5 * time.Second)
	err := v.probe(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("probe of 404 = %v, want ErrUnreachable", err)
	}
}

func TestValidateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before probing

	v := New(2 * time.Second)
	err := v.probe(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("probe of closed server = %v, want ErrUnreachable", err)
	}
}
