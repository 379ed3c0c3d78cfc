package generate

import "github.com/abhisek/kidquest/internal/llm"

// GameSchema is the structured output requested from the model. Every
// property is required because OpenAI's strict mode demands it; unused
// fields come back as zero values.
var GameSchema = &llm.Schema{
	Name:        "kidquest-game",
	Description: "A short educational mini-game for children: a title and a sequence of challenges",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short, playful game title, at most 40 characters",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One sentence telling the child what the game is about",
			},
			"pass_percent": map[string]any{
				"type":        "integer",
				"minimum":     50,
				"maximum":     100,
				"description": "Share of challenges, in percent, the child must get right to pass",
			},
			"challenges": map[string]any{
				"type":  "array",
				"items": challengeSchema,
			},
		},
		"required":             []any{"title", "description", "pass_percent", "challenges"},
		"additionalProperties": false,
	},
}

var challengeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"prompt": map[string]any{
			"type":        "string",
			"description": "The question shown to the child",
		},
		"variant": map[string]any{
			"type":        "string",
			"enum":        []any{"single", "set", "order", "text"},
			"description": "single: pick one option; set: pick every correct option; order: arrange options; text: write a short answer",
		},
		"explanation": map[string]any{
			"type":        "string",
			"description": "Kind, one or two sentence explanation shown after answering",
		},
		"options": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label": map[string]any{"type": "string"},
					"correct": map[string]any{
						"type":        "boolean",
						"description": "single and set only: whether picking this option is right",
					},
					"position": map[string]any{
						"type":        "integer",
						"description": "order only: 1-based place of this option in the correct order; 0 otherwise",
					},
				},
				"required":             []any{"label", "correct", "position"},
				"additionalProperties": false,
			},
			"description": "2 to 6 options; empty for text challenges",
		},
		"min_text_length": map[string]any{
			"type":        "integer",
			"minimum":     0,
			"description": "text only: minimum answer length in characters; 0 otherwise",
		},
	},
	"required":             []any{"prompt", "variant", "explanation", "options", "min_text_length"},
	"additionalProperties": false,
}

type gameOutput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PassPercent int               `json:"pass_percent"`
	Challenges  []challengeOutput `json:"challenges"`
}

type challengeOutput struct {
	Prompt        string         `json:"prompt"`
	Variant       string         `json:"variant"`
	Explanation   string         `json:"explanation"`
	Options       []optionOutput `json:"options"`
	MinTextLength int            `json:"min_text_length"`
}

type optionOutput struct {
	Label    string `json:"label"`
	Correct  bool   `json:"correct"`
	Position int    `json:"position"`
}
