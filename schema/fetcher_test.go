package schema_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/n9te9/go-graphql-devserver/schema"
)

func TestFetchSDL_Success(t *testing.T) {
	wantSDL := "type Query { hello: String }"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":"type Query { hello: String }"}}}`)) //nolint:errcheck
	}))
	defer srv.Close()
	got, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 1, Timeout: "5s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wantSDL {
		t.Errorf("SDL mismatch: got %q, want %q", got, wantSDL)
	}
}

func TestFetchSDL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 1, Timeout: "5s"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestFetchSDL_EmptySDL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":""}}}`)) //nolint:errcheck
	}))
	defer srv.Close()
	_, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 1, Timeout: "5s"})
	if err == nil {
		t.Fatal("expected error for empty SDL")
	}
}

func TestFetchSDL_Retry(t *testing.T) {
	wantSDL := "type Query { hello: String }"
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":"type Query { hello: String }"}}}`)) //nolint:errcheck
	}))
	defer srv.Close()
	got, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 3, Timeout: "5s"})
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if got != wantSDL {
		t.Errorf("SDL mismatch")
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestFetchSDL_RetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	_, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 2, Timeout: "5s"})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestFetchSDL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":"type Query { ok: Boolean }"}}}`)) //nolint:errcheck
	}))
	defer srv.Close()
	_, err := schema.FetchSDLForTest(srv.URL, &http.Client{}, schema.RetryOption{Attempts: 1, Timeout: "50ms"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestCompose_HostSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":"type Query { remote: String }"}}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	s, err := schema.ComposeWithClient([]schema.DataSource{
		{Name: "remote", Host: srv.URL},
	}, &http.Client{})
	if err != nil {
		t.Fatalf("ComposeWithClient failed: %v", err)
	}
	if s.QueryField("remote") == nil {
		t.Error("expected remote query field from fetched SDL")
	}
}

func TestCompose_HostSourceRetryOption(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"_service":{"sdl":"type Query { remote: String }"}}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	// One attempt exhausts before the server recovers.
	_, err := schema.ComposeWithClient([]schema.DataSource{
		{Name: "remote", Host: srv.URL, Retry: schema.RetryOption{Attempts: 1, Timeout: "5s"}},
	}, &http.Client{})
	if err == nil {
		t.Fatal("expected error with a single attempt")
	}

	callCount = 0
	s, err := schema.ComposeWithClient([]schema.DataSource{
		{Name: "remote", Host: srv.URL, Retry: schema.RetryOption{Attempts: 3, Timeout: "5s"}},
	}, &http.Client{})
	if err != nil {
		t.Fatalf("ComposeWithClient failed: %v", err)
	}
	if s.QueryField("remote") == nil {
		t.Error("expected remote query field after retries")
	}
	if callCount != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", callCount)
	}
}
