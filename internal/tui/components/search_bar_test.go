package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(t *testing.T, s SearchBar, text string) (SearchBar, SearchEvent) {
	t.Helper()
	var ev SearchEvent
	for _, r := range text {
		s, _, ev = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return s, ev
}

func TestSearchBar_IgnoresInputWhenBlurred(t *testing.T) {
	s := NewSearchBar()

	s, ev := typeInto(t, s, "cat")

	assert.Equal(t, SearchNone, ev)
	assert.Empty(t, s.Query())
}

func TestSearchBar_TypingReportsChange(t *testing.T) {
	s := NewSearchBar()
	s.Focus()

	s, ev := typeInto(t, s, "cat")

	assert.Equal(t, SearchChanged, ev)
	assert.Equal(t, "cat", s.Query())
}

func TestSearchBar_Submit(t *testing.T) {
	s := NewSearchBar()
	s.Focus()
	s, _ = typeInto(t, s, "  sunset ")

	s, _, ev := s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, SearchSubmit, ev)
	assert.Equal(t, "sunset", s.Query())
}

func TestSearchBar_EmptySubmitIsIgnored(t *testing.T) {
	s := NewSearchBar()
	s.Focus()

	_, _, ev := s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, SearchNone, ev)
}

func TestSearchBar_Cancel(t *testing.T) {
	s := NewSearchBar()
	s.Focus()

	_, _, ev := s.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, SearchCancel, ev)
}

func TestSearchBar_PickSuggestion(t *testing.T) {
	s := NewSearchBar()
	s.Focus()
	s, _ = typeInto(t, s, "ca")
	s.SetSuggestions([]string{"cat", "cars", "canyon"})

	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s, _, ev := s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, SearchSubmit, ev)
	assert.Equal(t, "cars", s.Query())
}

func TestSearchBar_SuggestionsAreCapped(t *testing.T) {
	s := NewSearchBar()

	s.SetSuggestions([]string{"a", "b", "c", "d", "e", "f", "g"})

	require.Len(t, s.Suggestions(), MaxSuggestions)
}

func TestSearchBar_ViewListsSuggestionsWhileFocused(t *testing.T) {
	s := NewSearchBar()
	s.SetWidth(60)
	s.SetSuggestions([]string{"mountain"})

	assert.NotContains(t, s.View(), "mountain")

	s.Focus()
	assert.Contains(t, s.View(), "mountain")
	assert.Greater(t, s.Height(), 3)
}
