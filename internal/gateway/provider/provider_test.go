package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDataURI(t *testing.T) {
	mt, data, ok := parseDataURI("data:image/png;base64,iVBORw0KGgo=")
	if !ok || mt != "image/png" || data != "iVBORw0KGgo=" {
		t.Fatalf("parseDataURI = %q %q %v", mt, data, ok)
	}
	for _, bad := range []string{"", "iVBORw0KGgo=", "data:image/png;base64,", "data:image/png,abc"} {
		if _, _, ok := parseDataURI(bad); ok {
			t.Errorf("parseDataURI(%q) accepted", bad)
		}
	}
}

func TestAnthropicNarrateRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"momentum looks "},{"type":"text","text":"constructive"}]}`))
	}))
	defer srv.Close()

	n := &AnthropicNarrator{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxRetries: 2, Timeout: 5 * time.Second}
	out, err := n.Narrate(context.Background(), Prompt{User: "describe"})
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if out != "momentum looks constructive" {
		t.Fatalf("out = %q", out)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestAnthropicNarrateRetriesTransportError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			// Drop the connection so the client sees a network error
			// rather than a status code.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("response writer cannot hijack")
				return
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	n := &AnthropicNarrator{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxRetries: 1, Timeout: 5 * time.Second}
	out, err := n.Narrate(context.Background(), Prompt{User: "x"})
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %q", out)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestAnthropicNarrateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model"}}`))
	}))
	defer srv.Close()

	n := &AnthropicNarrator{BaseURL: srv.URL, Model: "m"}
	if _, err := n.Narrate(context.Background(), Prompt{User: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildSelectsFirstEnabled(t *testing.T) {
	n, err := Build([]Config{
		{Provider: "anthropic", Model: "a", Enabled: false},
		{Provider: "anthropic", Model: "b", Enabled: true},
	}, time.Minute)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n == nil || n.ID() != "anthropic:b" {
		t.Fatalf("narrator = %v", n)
	}

	none, err := Build([]Config{{Provider: "anthropic", Model: "a"}}, 0)
	if err != nil || none != nil {
		t.Fatalf("disabled entries must yield nil, got %v %v", none, err)
	}

	if _, err := Build([]Config{{Provider: "mystery", Enabled: true}}, 0); err == nil {
		t.Fatal("unknown provider must fail")
	}
}
