package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const gameSchemaURL = "schema://kidquest-game.json"

// gameSchema is the structural contract of a game file. Semantic checks
// (correct answers, threshold range) are left to the engine.
var gameSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":    "string",
			"pattern": "^[a-z0-9]+(-[a-z0-9]+)*$",
		},
		"title":       map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"pillar":      map[string]any{"type": "string"},
		"age_group":   map[string]any{"type": "string"},
		"version":     map[string]any{"type": "string"},
		"next":        map[string]any{"type": "string"},
		"rules": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pass_threshold":   map[string]any{"type": []any{"integer", "number", "string"}},
				"step_reward":      map[string]any{"type": "integer", "minimum": 0},
				"completion_bonus": map[string]any{"type": "integer", "minimum": 0},
				"completion_xp":    map[string]any{"type": "integer", "minimum": 0},
			},
			"required":             []any{"pass_threshold"},
			"additionalProperties": false,
		},
		"challenges": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    challengeSchema,
		},
	},
	"required":             []any{"id", "title", "rules", "challenges"},
	"additionalProperties": false,
}

var challengeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string", "minLength": 1},
		"prompt":      map[string]any{"type": "string", "minLength": 1},
		"explanation": map[string]any{"type": "string"},
		"variant": map[string]any{
			"type": "string",
			"enum": []any{"single", "set", "order", "text", "match"},
		},
		"options": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":      map[string]any{"type": "string", "minLength": 1},
					"label":   map[string]any{"type": "string"},
					"correct": map[string]any{"type": "boolean"},
				},
				"required":             []any{"id", "label"},
				"additionalProperties": false,
			},
		},
		"target": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"pairs": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
		"policy":          map[string]any{"type": "string", "enum": []any{"exact", "at-least"}},
		"min_selected":    map[string]any{"type": "integer", "minimum": 1},
		"min_text_length": map[string]any{"type": "integer", "minimum": 0},
		"reward":          map[string]any{"type": "integer", "minimum": 0},
	},
	"required":             []any{"id", "prompt", "variant"},
	"additionalProperties": false,
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledGameSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		parsed, err := jsonValue(gameSchema)
		if err != nil {
			compileErr = fmt.Errorf("parse game schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(gameSchemaURL, parsed); err != nil {
			compileErr = fmt.Errorf("add game schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(gameSchemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded YAML document against the game schema.
func validateDocument(doc any) error {
	sch, err := compiledGameSchema()
	if err != nil {
		return err
	}
	v, err := jsonValue(doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// jsonValue round-trips v through encoding/json so YAML-decoded values reach
// the validator with JSON types.
func jsonValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
