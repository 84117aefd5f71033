package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/pixa/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

// MaxSuggestions is how many previous terms the bar lists
const MaxSuggestions = 5

// SearchEvent reports what a key press did to the search bar
type SearchEvent int

const (
	SearchNone    SearchEvent = iota
	SearchSubmit              // Query() holds the term to search
	SearchCancel              // Focus should return to the list
	SearchChanged             // Input changed; suggestions are stale
)

// SearchBar is the single-line term input with suggestions from the cache
type SearchBar struct {
	input       textinput.Model
	suggestions []string
	cursor      int // -1 when no suggestion is highlighted
	width       int
	prevQuery   string
}

// NewSearchBar creates a blurred search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search PixaBay..."
	ti.CharLimit = pixabay.MaxQueryLength
	ti.Width = 40
	ti.Prompt = "🔍 "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.ShowSuggestions = true

	return SearchBar{input: ti, cursor: -1}
}

// Focus focuses the input
func (s *SearchBar) Focus() tea.Cmd {
	s.cursor = -1
	return s.input.Focus()
}

// Blur blurs the input and hides suggestions
func (s *SearchBar) Blur() {
	s.input.Blur()
	s.cursor = -1
}

// Focused returns true while the bar takes key input
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// Query returns the trimmed input
func (s SearchBar) Query() string {
	return strings.TrimSpace(s.input.Value())
}

// SetQuery replaces the input text
func (s *SearchBar) SetQuery(q string) {
	s.input.SetValue(q)
	s.input.CursorEnd()
	s.prevQuery = s.input.Value()
}

// SetSuggestions sets previous terms matching the current input
func (s *SearchBar) SetSuggestions(terms []string) {
	if len(terms) > MaxSuggestions {
		terms = terms[:MaxSuggestions]
	}
	s.suggestions = terms
	s.input.SetSuggestions(terms)
	if s.cursor >= len(terms) {
		s.cursor = -1
	}
}

// Suggestions returns the listed terms
func (s SearchBar) Suggestions() []string {
	return s.suggestions
}

// SetWidth updates the component width
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-6, 10)
}

// Update handles messages while focused
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd, SearchEvent) {
	if !s.input.Focused() {
		return s, nil, SearchNone
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, SearchBarKeys.Cancel):
			return s, nil, SearchCancel

		case key.Matches(keyMsg, SearchBarKeys.Submit):
			if s.cursor >= 0 && s.cursor < len(s.suggestions) {
				s.SetQuery(s.suggestions[s.cursor])
				s.cursor = -1
			}
			if s.Query() == "" {
				return s, nil, SearchNone
			}
			return s, nil, SearchSubmit

		case key.Matches(keyMsg, SearchBarKeys.Next):
			if s.cursor < len(s.suggestions)-1 {
				s.cursor++
			}
			return s, nil, SearchNone

		case key.Matches(keyMsg, SearchBarKeys.Prev):
			if s.cursor >= 0 {
				s.cursor--
			}
			return s, nil, SearchNone
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if current := s.input.Value(); current != s.prevQuery {
		s.prevQuery = current
		s.cursor = -1
		return s, cmd, SearchChanged
	}
	return s, cmd, SearchNone
}

// View renders the bar and, while focused, the suggestion list
func (s SearchBar) View() string {
	style := styles.InactiveBorder
	if s.input.Focused() {
		style = styles.ActiveBorder
	}

	var b strings.Builder
	b.WriteString(s.input.View())

	if s.input.Focused() {
		for i, term := range s.suggestions {
			b.WriteString("\n")
			if i == s.cursor {
				b.WriteString(styles.MatchHighlightSelectedStyle.Render("› " + term))
			} else {
				b.WriteString(styles.DimStyle.Render("  " + term))
			}
		}
	}

	frameW, _ := style.GetFrameSize()
	return style.Width(max(s.width-frameW, 0)).Render(b.String())
}

// Height returns the rendered height in lines
func (s SearchBar) Height() int {
	return lipgloss.Height(s.View())
}
