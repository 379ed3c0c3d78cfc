package generate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/llm"
)

func validGameJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Piggy Bank Plans",
		"description": "Learn how saving a little helps a lot.",
		"pass_percent": 75,
		"challenges": [
			{
				"prompt": "Where is the safest place to keep your pocket money?",
				"variant": "single",
				"explanation": "A piggy bank keeps coins safe until you need them.",
				"options": [
					{"label": "Under the sofa", "correct": false, "position": 0},
					{"label": "In a piggy bank", "correct": true, "position": 0},
					{"label": "In your shoe", "correct": false, "position": 0}
				],
				"min_text_length": 0
			},
			{
				"prompt": "Which of these are needs?",
				"variant": "set",
				"explanation": "Food and a warm coat keep you healthy; toys are wants.",
				"options": [
					{"label": "Food", "correct": true, "position": 0},
					{"label": "Toy car", "correct": false, "position": 0},
					{"label": "Warm coat", "correct": true, "position": 0}
				],
				"min_text_length": 0
			},
			{
				"prompt": "Put the saving steps in order.",
				"variant": "order",
				"explanation": "First set a goal, then save, then buy.",
				"options": [
					{"label": "Buy the thing", "correct": false, "position": 3},
					{"label": "Pick a goal", "correct": false, "position": 1},
					{"label": "Save each week", "correct": false, "position": 2}
				],
				"min_text_length": 0
			},
			{
				"prompt": "What would you save up for, and why?",
				"variant": "text",
				"explanation": "Thinking about goals makes saving easier.",
				"options": [],
				"min_text_length": 20
			}
		]
	}`)
}

func newTestService(t *testing.T, responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	t.Helper()
	reg, err := catalog.Load(catalog.Embedded())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	mock := llm.NewMockProvider(responses...)
	return NewService(mock, reg, DefaultConfig(), nil), mock
}

func testInput() Input {
	return Input{Topic: "saving money", Pillar: catalog.PillarFinance, AgeGroup: "kids", Count: 4}
}

func TestGenerate_HappyPath(t *testing.T) {
	svc, mock := newTestService(t, llm.MockResponse{Content: validGameJSON()})

	g, err := svc.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.ID != "finance-kids-14" {
		t.Errorf("id = %q, want next free finance-kids id", g.ID)
	}
	if g.Title != "Piggy Bank Plans" || g.Pillar != catalog.PillarFinance || g.AgeGroup != "kids" {
		t.Errorf("metadata = %q %q %q", g.Title, g.Pillar, g.AgeGroup)
	}
	if got := g.Rules.PassThreshold.String(); got != "75%" {
		t.Errorf("threshold = %s", got)
	}
	if len(g.Challenges) != 4 {
		t.Fatalf("challenges = %d", len(g.Challenges))
	}

	single := g.Challenges[0]
	if single.ID != "q1" || single.Options[1].ID != "b" || !single.Options[1].Correct {
		t.Errorf("single = %+v", single)
	}
	set := g.Challenges[1]
	if strings.Join(set.Target, ",") != "a,c" || set.SetPolicy != engine.SetExact {
		t.Errorf("set target = %v policy %q", set.Target, set.SetPolicy)
	}
	for _, o := range set.Options {
		if o.Correct {
			t.Errorf("set option %q should not carry the single-choice flag", o.ID)
		}
	}
	if order := g.Challenges[2]; strings.Join(order.Target, ",") != "b,c,a" {
		t.Errorf("order target = %v", order.Target)
	}
	if text := g.Challenges[3]; text.MinTextLength != 20 || len(text.Options) != 0 {
		t.Errorf("text = %+v", text)
	}

	// The generated game plays end to end.
	s, err := g.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, sel := range []engine.Selection{
		engine.Pick("b"),
		engine.PickSet("c", "a"),
		engine.PickOrder("b", "c", "a"),
		engine.Answer("a bike so I can ride to school"),
	} {
		if s, err = engine.Submit(s, sel); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	out, err := engine.ComputeOutcome(s)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Passed || out.CorrectCount != 4 {
		t.Errorf("outcome = %+v", out)
	}

	req := mock.Calls[0]
	if req.Schema != GameSchema {
		t.Error("request did not carry the game schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Topic: saving money", "Number of challenges: 4", "Age group: kids"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Questions that already exist in this pillar (do not repeat them):\nNone") {
		t.Error("expected existing finance prompts in the avoid list")
	}
}

func TestGenerate_RegeneratesWithFeedback(t *testing.T) {
	var bad map[string]any
	json.Unmarshal(validGameJSON(), &bad)
	bad["challenges"] = bad["challenges"].([]any)[:2]
	badJSON, _ := json.Marshal(bad)

	svc, mock := newTestService(t,
		llm.MockResponse{Content: badJSON},
		llm.MockResponse{Content: validGameJSON()},
	)

	g, err := svc.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(g.Challenges) != 4 {
		t.Errorf("challenges = %d", len(g.Challenges))
	}
	if mock.CallCount() != 2 {
		t.Fatalf("calls = %d, want 2", mock.CallCount())
	}
	retry := mock.Calls[1].Messages[0].Content
	if !strings.Contains(retry, "rejected: got 2 challenges, asked for 4") {
		t.Errorf("retry prompt lacks feedback:\n%s", retry)
	}
}

func TestGenerate_GivesUpAfterAttempts(t *testing.T) {
	broken := strings.Replace(string(validGameJSON()), `"position": 1`, `"position": 3`, 1)
	svc, mock := newTestService(t,
		llm.MockResponse{Content: json.RawMessage(broken)},
		llm.MockResponse{Content: json.RawMessage(broken)},
		llm.MockResponse{Content: validGameJSON()},
	)

	_, err := svc.Generate(context.Background(), testInput())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if !strings.Contains(verr.Message, "order positions") {
		t.Errorf("message = %q", verr.Message)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want %d", mock.CallCount(), DefaultConfig().Attempts)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	svc, mock := newTestService(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	_, err := svc.Generate(context.Background(), testInput())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want provider unavailable", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider errors are retried by the llm layer, not here; calls = %d", mock.CallCount())
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		want   string
	}{
		{"empty topic", func(in *Input) { in.Topic = "  " }, "topic is required"},
		{"unknown pillar", func(in *Input) { in.Pillar = "cooking" }, "unknown pillar"},
		{"bad age group", func(in *Input) { in.AgeGroup = "adults" }, "age group"},
		{"too many", func(in *Input) { in.Count = 50 }, "count must be between"},
		{"match not generatable", func(in *Input) { in.Variants = []engine.Variant{engine.VariantMatch} }, "cannot be generated"},
		{"id exists", func(in *Input) { in.GameID = "finance-kids-12" }, "already exists"},
		{"id outside pillar", func(in *Input) { in.GameID = "moral-kids-99" }, "must start with"},
		{"dangling next", func(in *Input) { in.Next = "finance-kids-99" }, "next game"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newTestService(t)
			in := testInput()
			tt.modify(&in)
			_, err := svc.Generate(context.Background(), in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
			if mock.CallCount() != 0 {
				t.Error("provider called for invalid input")
			}
		})
	}
}

func TestGenerate_VariantRestriction(t *testing.T) {
	svc, _ := newTestService(t,
		llm.MockResponse{Content: validGameJSON()},
		llm.MockResponse{Content: validGameJSON()},
	)
	in := testInput()
	in.Variants = []engine.Variant{engine.VariantSingle, engine.VariantSingle, engine.VariantSet}

	_, err := svc.Generate(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) || !strings.Contains(verr.Message, `variant "order"`) {
		t.Fatalf("err = %v, want variant rejection", err)
	}
}

func TestGenerate_Defaults(t *testing.T) {
	mock := llm.NewMockProvider()
	svc := NewService(mock, nil, DefaultConfig(), nil)
	in, err := svc.normalize(Input{Topic: "kindness", Pillar: catalog.PillarMoral})
	if err != nil {
		t.Fatal(err)
	}
	if in.AgeGroup != "kids" || in.Count != 3 || in.GameID != "moral-kids-1" {
		t.Errorf("normalized = %+v", in)
	}
	if got := svc.avoidList(catalog.PillarMoral); got != nil {
		t.Errorf("avoid list without registry = %v", got)
	}
}

func TestSave(t *testing.T) {
	svc, _ := newTestService(t, llm.MockResponse{Content: validGameJSON()})
	in := testInput()
	in.Next = "finance-kids-12"
	g, err := svc.Generate(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "games")
	path, err := Save(dir, g)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "finance-kids-14.yaml" {
		t.Errorf("path = %s", path)
	}

	// The saved file loads alongside the built-in games.
	reg, err := catalog.LoadDefault(dir)
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	loaded, ok := reg.Get(g.ID)
	if !ok {
		t.Fatal("saved game not loaded")
	}
	if loaded.Next != "finance-kids-12" || len(loaded.Challenges) != 4 {
		t.Errorf("loaded = %+v", loaded)
	}

	if _, err := Save(dir, g); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second save err = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestOptionID(t *testing.T) {
	tests := map[int]string{0: "a", 1: "b", 5: "f"}
	for i, want := range tests {
		if got := optionID(i); got != want {
			t.Errorf("optionID(%d) = %q, want %q", i, got, want)
		}
	}
}
