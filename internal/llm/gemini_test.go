package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "description": "learner name"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer"},
				"minItems": 2,
				"maxItems": float64(4),
			},
			"odd": map[string]any{"type": "null"},
		},
		"required": []string{"name", "age"},
	}

	s := geminiSchema(def)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s, want OBJECT", s.Type)
	}
	if len(s.Properties) != 5 {
		t.Fatalf("properties = %d, want 5", len(s.Properties))
	}
	if p := s.Properties["name"]; p.Type != genai.TypeString || p.Description != "learner name" {
		t.Errorf("name = %+v", p)
	}
	if s.Properties["age"].Type != genai.TypeInteger {
		t.Errorf("age type = %s", s.Properties["age"].Type)
	}
	if got := s.Properties["grade"].Enum; len(got) != 3 {
		t.Errorf("grade enum = %v", got)
	}
	scores := s.Properties["scores"]
	if scores.Type != genai.TypeArray || scores.Items.Type != genai.TypeInteger {
		t.Errorf("scores = %+v", scores)
	}
	if scores.MinItems == nil || *scores.MinItems != 2 || scores.MaxItems == nil || *scores.MaxItems != 4 {
		t.Errorf("scores bounds = %v..%v", scores.MinItems, scores.MaxItems)
	}
	if s.Properties["odd"].Type != genai.TypeString {
		t.Errorf("unknown type should fall back to STRING, got %s", s.Properties["odd"].Type)
	}
	if len(s.Required) != 2 {
		t.Errorf("required = %v", s.Required)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{Model: "gemini-flash"}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
