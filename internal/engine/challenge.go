package engine

import (
	"fmt"
	"maps"
	"slices"
)

// Variant identifies how a challenge is answered and evaluated.
type Variant string

const (
	VariantSingle Variant = "single" // pick exactly one option
	VariantSet    Variant = "set"    // pick a subset of options
	VariantOrder  Variant = "order"  // arrange options into a sequence
	VariantText   Variant = "text"   // free-form reflective answer
	VariantMatch  Variant = "match"  // pair left options with right options
)

// Variants lists every supported variant.
var Variants = []Variant{VariantSingle, VariantSet, VariantOrder, VariantText, VariantMatch}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return slices.Contains(Variants, v)
}

// SetPolicy controls how a set challenge is judged.
type SetPolicy string

const (
	// SetExact requires the chosen ids to equal the target set.
	SetExact SetPolicy = "exact"
	// SetAtLeast requires at least MinSelected chosen ids from the target
	// set. Ids outside the target do not count against the player.
	SetAtLeast SetPolicy = "at-least"
)

// Option is one selectable choice within a challenge.
type Option struct {
	ID      string
	Label   string
	Correct bool // only meaningful for single-choice challenges
}

// Challenge is a single prompt within a game. Challenges are immutable once a
// session starts.
type Challenge struct {
	ID          string
	Prompt      string
	Explanation string // shown after the player responds
	Variant     Variant
	Options     []Option

	// Target is the canonical id set (set variant) or canonical id sequence
	// (order variant).
	Target []string

	// Pairs maps left option ids to right option ids (match variant).
	Pairs map[string]string

	SetPolicy     SetPolicy // defaults to SetExact
	MinSelected   int       // SetAtLeast only
	MinTextLength int       // text only, counted in runes after trimming

	// Reward overrides Rules.StepReward for this challenge when non-nil.
	Reward *int
}

// Option returns the option with the given id.
func (c Challenge) Option(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// CorrectOption returns the single correct option of a single-choice
// challenge.
func (c Challenge) CorrectOption() (Option, bool) {
	for _, o := range c.Options {
		if o.Correct {
			return o, true
		}
	}
	return Option{}, false
}

// MatchSides splits the options of a match challenge into left ids (keys of
// Pairs) and right ids, both in option order.
func (c Challenge) MatchSides() (left, right []string) {
	for _, o := range c.Options {
		if _, ok := c.Pairs[o.ID]; ok {
			left = append(left, o.ID)
		} else {
			right = append(right, o.ID)
		}
	}
	return left, right
}

func (c Challenge) policy() SetPolicy {
	if c.SetPolicy == "" {
		return SetExact
	}
	return c.SetPolicy
}

func (c Challenge) clone() Challenge {
	c.Options = slices.Clone(c.Options)
	c.Target = slices.Clone(c.Target)
	c.Pairs = maps.Clone(c.Pairs)
	if c.Reward != nil {
		r := *c.Reward
		c.Reward = &r
	}
	return c
}

func (c Challenge) validate() error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{ChallengeID: c.ID, Message: fmt.Sprintf(format, args...)}
	}

	if !c.Variant.Valid() {
		return invalid("unknown variant %q", c.Variant)
	}
	if c.Reward != nil && *c.Reward < 0 {
		return invalid("reward must not be negative")
	}

	ids := make(map[string]bool, len(c.Options))
	for _, o := range c.Options {
		if o.ID == "" {
			return invalid("option with empty id")
		}
		if ids[o.ID] {
			return invalid("duplicate option id %q", o.ID)
		}
		ids[o.ID] = true
	}

	if c.Variant != VariantText && len(c.Options) == 0 {
		return invalid("at least one option is required")
	}

	checkTarget := func() error {
		if len(c.Target) == 0 {
			return invalid("target must not be empty")
		}
		seen := make(map[string]bool, len(c.Target))
		for _, id := range c.Target {
			if !ids[id] {
				return invalid("target references unknown option %q", id)
			}
			if seen[id] {
				return invalid("target lists option %q twice", id)
			}
			seen[id] = true
		}
		return nil
	}

	switch c.Variant {
	case VariantSingle:
		n := 0
		for _, o := range c.Options {
			if o.Correct {
				n++
			}
		}
		if n != 1 {
			return invalid("exactly one option must be correct, found %d", n)
		}

	case VariantSet:
		if err := checkTarget(); err != nil {
			return err
		}
		switch c.policy() {
		case SetExact:
		case SetAtLeast:
			if c.MinSelected < 1 || c.MinSelected > len(c.Target) {
				return invalid("min selected must be between 1 and %d", len(c.Target))
			}
		default:
			return invalid("unknown set policy %q", c.SetPolicy)
		}

	case VariantOrder:
		if err := checkTarget(); err != nil {
			return err
		}

	case VariantText:
		if c.MinTextLength < 0 {
			return invalid("min text length must not be negative")
		}

	case VariantMatch:
		if len(c.Pairs) == 0 {
			return invalid("pairs must not be empty")
		}
		rights := make(map[string]bool, len(c.Pairs))
		for l, r := range c.Pairs {
			if !ids[l] {
				return invalid("pair references unknown option %q", l)
			}
			if !ids[r] {
				return invalid("pair references unknown option %q", r)
			}
			if _, isLeft := c.Pairs[r]; isLeft {
				return invalid("option %q is used on both sides", r)
			}
			if rights[r] {
				return invalid("option %q is paired twice", r)
			}
			rights[r] = true
		}
	}
	return nil
}

// Validate checks a challenge sequence and its rules without starting a
// session. It returns the first *ValidationError found.
func Validate(challenges []Challenge, rules Rules) error {
	if len(challenges) == 0 {
		return &ValidationError{Message: "challenge sequence is empty"}
	}
	seen := make(map[string]bool, len(challenges))
	for i, c := range challenges {
		if c.ID == "" {
			return &ValidationError{Message: fmt.Sprintf("challenge %d has an empty id", i+1)}
		}
		if seen[c.ID] {
			return &ValidationError{ChallengeID: c.ID, Message: "duplicate challenge id"}
		}
		seen[c.ID] = true
		if err := c.validate(); err != nil {
			return err
		}
	}
	return rules.validate(len(challenges))
}
