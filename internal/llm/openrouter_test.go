package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openrouter" {
		t.Errorf("name = %q", p.Name())
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q, want pass-through", p.ModelID())
	}

	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestOpenRouterProvider_CustomBaseURL(t *testing.T) {
	var path, model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var body struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`hello`, "stop"))
	}))
	defer server.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.0-flash-001",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != "hello" {
		t.Errorf("content = %s", resp.Content)
	}
	if path != "/api/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
	if model != "google/gemini-2.0-flash-001" {
		t.Errorf("model = %q", model)
	}
}
