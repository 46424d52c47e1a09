package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMatchesCommandWord(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"reset:today", "reset:subject", "reset:all"}, Suggest("reset:", 5))
	assert.Equal(t, []string{"backup:import <path>"}, Suggest("backup:import /tmp/x.json", 5))
	assert.Len(t, Suggest("", 5), 5)
	assert.Empty(t, Suggest("plugin:", 5))
}

func TestPaletteSubmitTrimsInput(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	require.True(t, p.Visible())

	for _, r := range " session:start 40 " {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteSubmitMsg{Input: "session:start 40"}, cmd())
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteCancelMsg{}, cmd())
}
