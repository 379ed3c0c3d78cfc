package engine

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// evaluate judges sel against c. It returns an *InvalidSelectionError when
// the selection does not fit the challenge at all.
func evaluate(c Challenge, sel Selection) (bool, error) {
	if sel.variant != c.Variant {
		return false, &InvalidSelectionError{
			ChallengeID: c.ID,
			Message:     "expected a " + string(c.Variant) + " selection, got " + describeVariant(sel.variant),
		}
	}

	known := func(id string) error {
		if _, ok := c.Option(id); !ok {
			return &InvalidSelectionError{ChallengeID: c.ID, OptionID: id, Message: "unknown option"}
		}
		return nil
	}

	switch c.Variant {
	case VariantSingle:
		if err := known(sel.OptionID); err != nil {
			return false, err
		}
		o, _ := c.Option(sel.OptionID)
		return o.Correct, nil

	case VariantSet:
		chosen := make(map[string]bool, len(sel.OptionIDs))
		for _, id := range sel.OptionIDs {
			if err := known(id); err != nil {
				return false, err
			}
			chosen[id] = true
		}
		hits := 0
		for _, id := range c.Target {
			if chosen[id] {
				hits++
			}
		}
		if c.policy() == SetAtLeast {
			return hits >= c.MinSelected, nil
		}
		return hits == len(c.Target) && len(chosen) == len(c.Target), nil

	case VariantOrder:
		for _, id := range sel.OptionIDs {
			if err := known(id); err != nil {
				return false, err
			}
		}
		return slices.Equal(sel.OptionIDs, c.Target), nil

	case VariantText:
		text := strings.TrimSpace(sel.Text)
		if text == "" {
			return false, nil
		}
		return utf8.RuneCountInString(text) >= c.MinTextLength, nil

	case VariantMatch:
		for l, r := range sel.Pairs {
			if err := known(l); err != nil {
				return false, err
			}
			if err := known(r); err != nil {
				return false, err
			}
		}
		return maps.Equal(sel.Pairs, c.Pairs), nil
	}
	return false, &InvalidSelectionError{ChallengeID: c.ID, Message: "unsupported variant"}
}

func describeVariant(v Variant) string {
	if v == "" {
		return "an empty selection"
	}
	return "a " + string(v) + " selection"
}
