package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for reflective answers and shows a
// character counter when a minimum length applies.
type TextInput struct {
	Model     textinput.Model
	MinLength int
}

// NewTextInput creates a focused text input.
func NewTextInput(placeholder string, minLength, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()

	return TextInput{Model: ti, MinLength: minLength}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input with its counter.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.MinLength <= 0 {
		return view
	}
	n := t.Length()
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if n >= t.MinLength {
		style = lipgloss.NewStyle().Foreground(theme.Success)
	}
	return view + "  " + style.Render(fmt.Sprintf("%d/%d", n, t.MinLength))
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Length returns the trimmed length in runes.
func (t TextInput) Length() int {
	return utf8.RuneCountInString(strings.TrimSpace(t.Model.Value()))
}
