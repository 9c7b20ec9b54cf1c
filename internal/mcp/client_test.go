package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func TestGenerateTemplateSuccess(t *testing.T) {
	var gotAuth string
	var gotBody commandRequest

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/agent/command" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"design_url": "https://x/d1",
			"design_id":  "d1",
		})
	}))
	defer upstream.Close()

	client := NewClient(Options{BaseURL: upstream.URL, Token: "secret"})
	design, raw, err := client.GenerateTemplate(context.Background(), Payload{"name": "Flyer", "width": 800, "height": 600})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header: got %q", gotAuth)
	}
	if gotBody.Action != "generate_template" {
		t.Fatalf("action: got %q", gotBody.Action)
	}
	if gotBody.Payload["name"] != "Flyer" {
		t.Fatalf("payload name: got %v", gotBody.Payload["name"])
	}
	if design.URL != "https://x/d1" || design.ID != "d1" {
		t.Fatalf("design: got %+v", design)
	}
	if !json.Valid(raw) {
		t.Fatalf("raw body is not json: %q", raw)
	}
}

func TestGenerateTemplateFallbackFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		url  string
		id   string
	}{
		{"camel design url", `{"designUrl":"https://x/a"}`, "https://x/a", ""},
		{"plain url", `{"url":"https://x/b","id":"b"}`, "https://x/b", "b"},
		{"edit url", `{"editUrl":"https://x/c","designId":"c"}`, "https://x/c", "c"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer upstream.Close()

			client := NewClient(Options{BaseURL: upstream.URL})
			design, _, err := client.GenerateTemplate(context.Background(), Payload{})
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if design.URL != tc.url {
				t.Fatalf("url: got %q, want %q", design.URL, tc.url)
			}
			if design.ID != tc.id {
				t.Fatalf("id: got %q, want %q", design.ID, tc.id)
			}
		})
	}
}

func TestGenerateTemplateUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"agent busy"}`))
	}))
	defer upstream.Close()

	client := NewClient(Options{BaseURL: upstream.URL})
	_, raw, err := client.GenerateTemplate(context.Background(), Payload{"name": "x"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "agent busy") {
		t.Fatalf("expected upstream message in error, got %q", err.Error())
	}
	if !strings.Contains(string(raw), "agent busy") {
		t.Fatalf("expected raw body echoed, got %q", raw)
	}
}

func TestGenerateTemplateUnreachableUpstream(t *testing.T) {
	// Closed server: the port is no longer listening.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := NewClient(Options{BaseURL: upstream.URL})
	_, _, err := client.GenerateTemplate(context.Background(), Payload{"name": "x"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGenerateTemplateMissingURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer upstream.Close()

	client := NewClient(Options{BaseURL: upstream.URL})
	_, _, err := client.GenerateTemplate(context.Background(), Payload{"name": "x"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream for url-less response, got %v", err)
	}
}
