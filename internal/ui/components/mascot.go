package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/ui/theme"
)

// Mood selects which mascot art to display.
type Mood int

const (
	MoodIdle      Mood = iota
	MoodCheer          // passed a game
	MoodEncourage      // missed the pass mark
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ $ ★ │
└─────┘`

const mascotCheer = `┌─────┐
│ ★ ★ │
│  ▿  │
│ $ ★ │
└─╥═╥─┘
  ╚═╝`

const mascotEncourage = `┌─────┐
│ ◉ ◉ │ ?
│  ~  │
│ $ ★ │
└─────┘`

// Mascot returns the mascot art for the given mood.
func Mascot(m Mood) string {
	switch m {
	case MoodCheer:
		return lipgloss.NewStyle().Foreground(theme.Coin).Render(mascotCheer)
	case MoodEncourage:
		return lipgloss.NewStyle().Foreground(theme.Accent).Render(mascotEncourage)
	default:
		return lipgloss.NewStyle().Foreground(theme.Primary).Render(mascotIdle)
	}
}
