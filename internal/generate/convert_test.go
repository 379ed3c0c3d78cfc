package generate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/kidquest/internal/catalog"
)

func TestToGame_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*gameOutput)
		want   string
	}{
		{"empty title", func(g *gameOutput) { g.Title = " " }, "title is empty"},
		{"long title", func(g *gameOutput) { g.Title = strings.Repeat("x", 61) }, "title exceeds"},
		{"pass percent", func(g *gameOutput) { g.PassPercent = 0 }, "pass_percent"},
		{"repeated prompt", func(g *gameOutput) { g.Challenges[1].Prompt = strings.ToUpper(g.Challenges[0].Prompt) }, "repeats"},
		{"too few options", func(g *gameOutput) { g.Challenges[0].Options = g.Challenges[0].Options[:1] }, "options, want 2-6"},
		{"duplicate label", func(g *gameOutput) { g.Challenges[1].Options[2].Label = "food" }, "twice"},
		{"text length", func(g *gameOutput) { g.Challenges[3].MinTextLength = 500 }, "min_text_length"},
		{"unknown variant", func(g *gameOutput) { g.Challenges[0].Variant = "essay" }, `variant "essay"`},
		{"two correct singles", func(g *gameOutput) { g.Challenges[0].Options[0].Correct = true }, "exactly one option"},
		{"set without answers", func(g *gameOutput) {
			for i := range g.Challenges[1].Options {
				g.Challenges[1].Options[i].Correct = false
			}
		}, "target must not be empty"},
		{"order position zero", func(g *gameOutput) { g.Challenges[2].Options[0].Position = 0 }, "order positions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out gameOutput
			if err := json.Unmarshal(validGameJSON(), &out); err != nil {
				t.Fatal(err)
			}
			tt.modify(&out)

			_, err := toGame(out, Input{GameID: "finance-kids-9", Pillar: catalog.PillarFinance, AgeGroup: "kids", Count: 4}, DefaultConfig())
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if !verr.Retryable {
				t.Error("generated content problems should be retryable")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
