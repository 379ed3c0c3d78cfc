package llm

import "strings"

// ModelCost is list pricing in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost finds pricing for a model id. Served ids often carry a date
// suffix ("gpt-4o-mini-2024-07-18"), so the longest known prefix wins
// when there is no exact entry. OpenRouter's "vendor/model" ids are
// matched on the model part.
func LookupCost(modelID string) (ModelCost, bool) {
	if _, after, ok := strings.Cut(modelID, "/"); ok {
		modelID = after
	}
	if c, ok := modelCosts[modelID]; ok {
		return c, true
	}
	best := ""
	for id := range modelCosts {
		if strings.HasPrefix(modelID, id) && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return ModelCost{}, false
	}
	return modelCosts[best], true
}

// TODO: refresh from the vendors' pricing pages when the default models change.
var modelCosts = map[string]ModelCost{
	"claude-3-5-haiku":  {0.8, 4},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4":     {15, 75},
	"claude-opus-4-5":   {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},
}
