package catalog

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/kidquest/internal/engine"
)

// SupportedMajor is the content format major version this build reads.
const SupportedMajor = "v1"

// defaultVersion is assumed for files that omit a version.
const defaultVersion = "v1.0.0"

var (
	// ErrSchema wraps structural problems in a game file.
	ErrSchema = errors.New("game file does not match schema")
	// ErrVersion is returned for files written for another format major.
	ErrVersion = errors.New("unsupported content version")
)

type gameFile struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description,omitempty"`
	Pillar      string          `yaml:"pillar,omitempty"`
	AgeGroup    string          `yaml:"age_group,omitempty"`
	Version     string          `yaml:"version,omitempty"`
	Next        string          `yaml:"next,omitempty"`
	Rules       rulesFile       `yaml:"rules"`
	Challenges  []challengeFile `yaml:"challenges"`
}

type rulesFile struct {
	PassThreshold   string `yaml:"pass_threshold"`
	StepReward      int    `yaml:"step_reward,omitempty"`
	CompletionBonus int    `yaml:"completion_bonus,omitempty"`
	CompletionXP    int    `yaml:"completion_xp,omitempty"`
}

type challengeFile struct {
	ID            string            `yaml:"id"`
	Prompt        string            `yaml:"prompt"`
	Explanation   string            `yaml:"explanation,omitempty"`
	Variant       string            `yaml:"variant"`
	Options       []optionFile      `yaml:"options,omitempty"`
	Target        []string          `yaml:"target,omitempty"`
	Pairs         map[string]string `yaml:"pairs,omitempty"`
	Policy        string            `yaml:"policy,omitempty"`
	MinSelected   int               `yaml:"min_selected,omitempty"`
	MinTextLength int               `yaml:"min_text_length,omitempty"`
	Reward        *int              `yaml:"reward,omitempty"`
}

type optionFile struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Correct bool   `yaml:"correct,omitempty"`
}

// Parse decodes and validates one game file. name is used in errors and
// recorded as the game's Source.
func Parse(name string, data []byte) (Game, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Game{}, fmt.Errorf("parse %s: %w", name, err)
	}
	if err := validateDocument(doc); err != nil {
		return Game{}, fmt.Errorf("%s: %w", name, err)
	}

	var gf gameFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return Game{}, fmt.Errorf("decode %s: %w", name, err)
	}
	g, err := gf.toGame()
	if err != nil {
		return Game{}, fmt.Errorf("%s: %w", name, err)
	}
	g.Source = name
	return g, nil
}

func (gf gameFile) toGame() (Game, error) {
	version := gf.Version
	if version == "" {
		version = defaultVersion
	}
	if !semver.IsValid(version) {
		return Game{}, fmt.Errorf("%w: %q is not a semantic version", ErrVersion, version)
	}
	if semver.Major(version) != SupportedMajor {
		return Game{}, fmt.Errorf("%w: %s (want %s.x)", ErrVersion, version, SupportedMajor)
	}

	pillar := Pillar(gf.Pillar)
	if pillar == "" {
		derived, ok := PillarOf(gf.ID)
		if !ok {
			return Game{}, fmt.Errorf("game %q: cannot derive pillar from id", gf.ID)
		}
		pillar = derived
	}
	if !pillar.Valid() {
		return Game{}, fmt.Errorf("game %q: unknown pillar %q", gf.ID, pillar)
	}

	threshold, err := engine.ParseThreshold(gf.Rules.PassThreshold)
	if err != nil {
		return Game{}, fmt.Errorf("game %q: %w", gf.ID, err)
	}

	g := Game{
		ID:          gf.ID,
		Title:       gf.Title,
		Description: gf.Description,
		Pillar:      pillar,
		AgeGroup:    gf.AgeGroup,
		Version:     version,
		Next:        gf.Next,
		Rules: engine.Rules{
			PassThreshold:   threshold,
			StepReward:      gf.Rules.StepReward,
			CompletionBonus: gf.Rules.CompletionBonus,
			CompletionXP:    gf.Rules.CompletionXP,
		},
		Challenges: make([]engine.Challenge, 0, len(gf.Challenges)),
	}
	for _, cf := range gf.Challenges {
		c := engine.Challenge{
			ID:            cf.ID,
			Prompt:        cf.Prompt,
			Explanation:   cf.Explanation,
			Variant:       engine.Variant(cf.Variant),
			Target:        cf.Target,
			Pairs:         cf.Pairs,
			SetPolicy:     engine.SetPolicy(cf.Policy),
			MinSelected:   cf.MinSelected,
			MinTextLength: cf.MinTextLength,
			Reward:        cf.Reward,
		}
		for _, of := range cf.Options {
			c.Options = append(c.Options, engine.Option{ID: of.ID, Label: of.Label, Correct: of.Correct})
		}
		g.Challenges = append(g.Challenges, c)
	}

	if err := engine.Validate(g.Challenges, g.Rules); err != nil {
		return Game{}, fmt.Errorf("game %q: %w", g.ID, err)
	}
	return g, nil
}

// Encode renders g in the game file format.
func Encode(g Game) ([]byte, error) {
	gf := gameFile{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Pillar:      string(g.Pillar),
		AgeGroup:    g.AgeGroup,
		Version:     g.Version,
		Next:        g.Next,
		Rules: rulesFile{
			PassThreshold:   g.Rules.PassThreshold.String(),
			StepReward:      g.Rules.StepReward,
			CompletionBonus: g.Rules.CompletionBonus,
			CompletionXP:    g.Rules.CompletionXP,
		},
	}
	for _, c := range g.Challenges {
		cf := challengeFile{
			ID:            c.ID,
			Prompt:        c.Prompt,
			Explanation:   c.Explanation,
			Variant:       string(c.Variant),
			Target:        c.Target,
			Pairs:         c.Pairs,
			Policy:        string(c.SetPolicy),
			MinSelected:   c.MinSelected,
			MinTextLength: c.MinTextLength,
			Reward:        c.Reward,
		}
		for _, o := range c.Options {
			cf.Options = append(cf.Options, optionFile{ID: o.ID, Label: o.Label, Correct: o.Correct})
		}
		gf.Challenges = append(gf.Challenges, cf)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(gf); err != nil {
		return nil, fmt.Errorf("encode game %q: %w", g.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode game %q: %w", g.ID, err)
	}
	return buf.Bytes(), nil
}
