package tui

import (
	"testing"

	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"
)

func newLocationModel() *mainModel {
	m := &mainModel{
		wiz:        wizard.New(1, nil, nil),
		inpCountry: textinput.New(),
		inpRegion:  textinput.New(),
		inpAddress: textinput.New(),
	}
	m.inpCountry.ShowSuggestions = true
	m.inpCountry.SetSuggestions([]string{"Perú", "Portugal", "México"})
	m.inpCountry.Focus()
	return m
}

func TestTabAcceptsCountrySuggestion(t *testing.T) {
	m := newLocationModel()
	m.updateLocation(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("per")})
	assert.Equal(t, "per", m.inpCountry.Value())

	m.updateLocation(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Perú", m.inpCountry.Value())
	assert.Equal(t, "Perú", m.wiz.State().Fields[validate.FieldCountry])
	assert.Equal(t, 1, m.fieldFocus)
}

func TestTabKeepsUnknownCountry(t *testing.T) {
	m := newLocationModel()
	m.updateLocation(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Atlántida")})
	m.updateLocation(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Atlántida", m.inpCountry.Value())
	assert.Equal(t, 1, m.fieldFocus)
}

func TestSuggestionOnlyAppliesToCountry(t *testing.T) {
	m := newLocationModel()
	m.fieldFocus = 1
	m.inpCountry.SetValue("p")
	m.acceptCountrySuggestion()
	assert.Equal(t, "p", m.inpCountry.Value())
}
