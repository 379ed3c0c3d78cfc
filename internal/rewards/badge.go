package rewards

import "time"

// BadgeType identifies the kind of achievement.
type BadgeType string

const (
	BadgeSession BadgeType = "session" // passed a game
	BadgeStreak  BadgeType = "streak"  // consecutive satisfied challenges
)

// AllBadgeTypes returns all badge types in display order.
func AllBadgeTypes() []BadgeType {
	return []BadgeType{BadgeSession, BadgeStreak}
}

// DisplayName returns a human-readable label for the badge type.
func (t BadgeType) DisplayName() string {
	switch t {
	case BadgeSession:
		return "Game Cleared"
	case BadgeStreak:
		return "Hot Streak"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the badge type.
func (t BadgeType) Icon() string {
	switch t {
	case BadgeSession:
		return "🏆"
	case BadgeStreak:
		return "⚡"
	default:
		return "✦"
	}
}

// Rarity is the tier of a badge.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities returns all rarities from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// AccuracyRarity grades a passed game by its accuracy (0.0-1.0).
func AccuracyRarity(accuracy float64) Rarity {
	switch {
	case accuracy >= 1.0:
		return RarityLegendary
	case accuracy >= 0.80:
		return RarityEpic
	case accuracy >= 0.60:
		return RarityRare
	default:
		return RarityCommon
	}
}

// MinStreak is the shortest run of satisfied challenges that earns a
// streak badge.
const MinStreak = 5

// StreakRarity grades a streak by its length.
func StreakRarity(length int) Rarity {
	switch {
	case length >= 15:
		return RarityLegendary
	case length >= 10:
		return RarityEpic
	case length >= 7:
		return RarityRare
	default:
		return RarityCommon
	}
}

// Badge is one earned achievement.
type Badge struct {
	Type      BadgeType
	Rarity    Rarity
	GameID    string
	SessionID string
	Reason    string // e.g. "Quiz on Spending cleared (80% accuracy)"
	AwardedAt time.Time
}
