package engine

import (
	"maps"
	"slices"
)

// Selection is a player's answer to the current challenge. Build one with
// Pick, PickSet, PickOrder, Answer or Match so its variant is recorded.
type Selection struct {
	OptionID  string            // single
	OptionIDs []string          // set, order
	Text      string            // text
	Pairs     map[string]string // match: left id -> right id

	variant Variant
}

// Pick selects a single option.
func Pick(id string) Selection {
	return Selection{variant: VariantSingle, OptionID: id}
}

// PickSet selects a subset of options. Order and duplicates are ignored.
func PickSet(ids ...string) Selection {
	return Selection{variant: VariantSet, OptionIDs: slices.Clone(ids)}
}

// PickOrder arranges options into a sequence.
func PickOrder(ids ...string) Selection {
	return Selection{variant: VariantOrder, OptionIDs: slices.Clone(ids)}
}

// Answer submits free-form text.
func Answer(text string) Selection {
	return Selection{variant: VariantText, Text: text}
}

// Match pairs left option ids with right option ids.
func Match(pairs map[string]string) Selection {
	return Selection{variant: VariantMatch, Pairs: maps.Clone(pairs)}
}

// Variant returns the variant the selection was built for.
func (s Selection) Variant() Variant { return s.variant }

func (s Selection) clone() Selection {
	s.OptionIDs = slices.Clone(s.OptionIDs)
	s.Pairs = maps.Clone(s.Pairs)
	return s
}
