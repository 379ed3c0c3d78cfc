package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type thresholdKind int

const (
	thresholdUnset thresholdKind = iota
	thresholdCount
	thresholdFraction
)

// fractionEpsilon absorbs float error when a fraction times the challenge
// count lands on an integer (0.6 * 5).
const fractionEpsilon = 1e-9

// Threshold is the pass gate of a game: either an absolute number of
// satisfied challenges or a fraction of the challenge count. The zero value
// is unset and rejected by Start.
type Threshold struct {
	kind     thresholdKind
	count    int
	fraction float64
}

// AtLeast returns a threshold met by n or more satisfied challenges.
func AtLeast(n int) Threshold {
	return Threshold{kind: thresholdCount, count: n}
}

// Fraction returns a threshold met when the satisfied share reaches f.
func Fraction(f float64) Threshold {
	return Threshold{kind: thresholdFraction, fraction: f}
}

// ParseThreshold accepts "3" (count), "70%" or "0.7" (fraction).
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold")
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return Threshold{}, fmt.Errorf("parse threshold %q: %w", s, err)
		}
		return Fraction(f / 100), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return AtLeast(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("parse threshold %q: %w", s, err)
	}
	return Fraction(f), nil
}

// IsZero reports whether the threshold is unset.
func (t Threshold) IsZero() bool { return t.kind == thresholdUnset }

// IsFraction reports whether the threshold is relative to the challenge count.
func (t Threshold) IsFraction() bool { return t.kind == thresholdFraction }

// Required returns the number of satisfied challenges needed out of total.
func (t Threshold) Required(total int) int {
	switch t.kind {
	case thresholdCount:
		return t.count
	case thresholdFraction:
		return int(math.Ceil(t.fraction*float64(total) - fractionEpsilon))
	}
	return 0
}

// Met reports whether correct satisfied challenges out of total pass.
func (t Threshold) Met(correct, total int) bool {
	return correct >= t.Required(total)
}

func (t Threshold) String() string {
	switch t.kind {
	case thresholdCount:
		return strconv.Itoa(t.count)
	case thresholdFraction:
		pct := math.Round(t.fraction*10000) / 100
		return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
	}
	return ""
}

func (t Threshold) validate(total int) error {
	switch t.kind {
	case thresholdCount:
		if t.count < 0 || t.count > total {
			return &ValidationError{Message: fmt.Sprintf("pass threshold %d outside 0..%d", t.count, total)}
		}
	case thresholdFraction:
		if t.fraction <= 0 || t.fraction > 1 || math.IsNaN(t.fraction) {
			return &ValidationError{Message: fmt.Sprintf("pass threshold fraction %v outside (0, 1]", t.fraction)}
		}
	default:
		return &ValidationError{Message: "pass threshold is not configured"}
	}
	return nil
}
