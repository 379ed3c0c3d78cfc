package generate

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
)

const (
	maxTitleLen  = 60
	maxPromptLen = 400
	minOptions   = 2
	maxOptions   = 6
	maxMinText   = 200
)

// toGame turns model output into a catalog game. Option ids are assigned
// a, b, c... and challenge ids q1, q2... in the order the model listed them.
func toGame(out gameOutput, in Input, cfg Config) (catalog.Game, error) {
	if err := checkStructure(out, in); err != nil {
		return catalog.Game{}, err
	}

	g := catalog.Game{
		ID:          in.GameID,
		Title:       strings.TrimSpace(out.Title),
		Description: strings.TrimSpace(out.Description),
		Pillar:      in.Pillar,
		AgeGroup:    in.AgeGroup,
		Version:     "v1.0.0",
		Next:        in.Next,
		Rules: engine.Rules{
			PassThreshold:   engine.Fraction(float64(out.PassPercent) / 100),
			StepReward:      cfg.StepReward,
			CompletionBonus: cfg.CompletionBonus,
			CompletionXP:    cfg.CompletionXP,
		},
	}
	for i, co := range out.Challenges {
		c, err := toChallenge(fmt.Sprintf("q%d", i+1), co)
		if err != nil {
			return catalog.Game{}, err
		}
		g.Challenges = append(g.Challenges, c)
	}

	if err := engine.Validate(g.Challenges, g.Rules); err != nil {
		return catalog.Game{}, &ValidationError{Check: "engine", Message: err.Error(), Retryable: true}
	}
	return g, nil
}

func checkStructure(out gameOutput, in Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Check: "structure", Message: fmt.Sprintf(format, args...), Retryable: true}
	}
	title := strings.TrimSpace(out.Title)
	if title == "" {
		return fail("title is empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fail("title exceeds %d characters", maxTitleLen)
	}
	if out.PassPercent < 1 || out.PassPercent > 100 {
		return fail("pass_percent %d is outside 1-100", out.PassPercent)
	}
	if len(out.Challenges) != in.Count {
		return fail("got %d challenges, asked for %d", len(out.Challenges), in.Count)
	}

	allowed := allowedVariants(in)
	prompts := make(map[string]bool, len(out.Challenges))
	for i, c := range out.Challenges {
		n := i + 1
		prompt := strings.TrimSpace(c.Prompt)
		if prompt == "" {
			return fail("challenge %d has an empty prompt", n)
		}
		if utf8.RuneCountInString(prompt) > maxPromptLen {
			return fail("challenge %d prompt exceeds %d characters", n, maxPromptLen)
		}
		key := strings.ToLower(prompt)
		if prompts[key] {
			return fail("challenge %d repeats an earlier prompt", n)
		}
		prompts[key] = true
		if !slices.Contains(allowed, engine.Variant(c.Variant)) {
			return fail("challenge %d uses variant %q, allowed: %s", n, c.Variant, joinVariants(allowed))
		}
		if c.Variant == string(engine.VariantText) {
			if c.MinTextLength < 0 || c.MinTextLength > maxMinText {
				return fail("challenge %d min_text_length %d is outside 0-%d", n, c.MinTextLength, maxMinText)
			}
			continue
		}
		if len(c.Options) < minOptions || len(c.Options) > maxOptions {
			return fail("challenge %d has %d options, want %d-%d", n, len(c.Options), minOptions, maxOptions)
		}
		labels := make(map[string]bool, len(c.Options))
		for _, o := range c.Options {
			label := strings.ToLower(strings.TrimSpace(o.Label))
			if label == "" {
				return fail("challenge %d has an empty option", n)
			}
			if labels[label] {
				return fail("challenge %d lists option %q twice", n, o.Label)
			}
			labels[label] = true
		}
	}
	return nil
}

func toChallenge(id string, co challengeOutput) (engine.Challenge, error) {
	c := engine.Challenge{
		ID:          id,
		Prompt:      strings.TrimSpace(co.Prompt),
		Explanation: strings.TrimSpace(co.Explanation),
		Variant:     engine.Variant(co.Variant),
	}
	if c.Variant == engine.VariantText {
		c.MinTextLength = co.MinTextLength
		return c, nil
	}

	for i, o := range co.Options {
		c.Options = append(c.Options, engine.Option{
			ID:      optionID(i),
			Label:   strings.TrimSpace(o.Label),
			Correct: c.Variant == engine.VariantSingle && o.Correct,
		})
	}

	switch c.Variant {
	case engine.VariantSet:
		for i, o := range co.Options {
			if o.Correct {
				c.Target = append(c.Target, optionID(i))
			}
		}
		c.SetPolicy = engine.SetExact

	case engine.VariantOrder:
		// Positions must be a permutation of 1..n.
		c.Target = make([]string, len(co.Options))
		for i, o := range co.Options {
			if o.Position < 1 || o.Position > len(co.Options) || c.Target[o.Position-1] != "" {
				return engine.Challenge{}, &ValidationError{
					Check:     "structure",
					Message:   fmt.Sprintf("challenge %s: order positions must be 1 to %d, each used once", id, len(co.Options)),
					Retryable: true,
				}
			}
			c.Target[o.Position-1] = optionID(i)
		}
	}
	return c, nil
}

func optionID(i int) string {
	return string(rune('a' + i))
}

func allowedVariants(in Input) []engine.Variant {
	if len(in.Variants) == 0 {
		return Generatable
	}
	return in.Variants
}

func joinVariants(vs []engine.Variant) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
