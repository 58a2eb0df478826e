package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eliasnord/neonpane/internal/domain"
)

func TestProfilesAddModeCollectsInput(t *testing.T) {
	m := NewProfilesView()
	m.SetSize(80, 24)
	m.EnterAddMode()

	if m.Mode != ProfileModeAdd {
		t.Fatalf("expected add mode, got %v", m.Mode)
	}

	typeInto := func(s string) {
		for _, r := range s {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}

	typeInto("staging")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto("napi_secret")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto("https://api.example.test")

	profile := m.GetNewProfile()
	if profile.Name != "staging" {
		t.Errorf("expected name %q, got %q", "staging", profile.Name)
	}
	if profile.Token != "napi_secret" {
		t.Errorf("expected token %q, got %q", "napi_secret", profile.Token)
	}
	if profile.BaseURL != "https://api.example.test" {
		t.Errorf("expected base URL %q, got %q", "https://api.example.test", profile.BaseURL)
	}
}

func TestProfilesExitAddModeReturnsToList(t *testing.T) {
	m := NewProfilesView()
	m.EnterAddMode()
	m.ExitAddMode()

	if m.Mode != ProfileModeList {
		t.Errorf("expected list mode after exit, got %v", m.Mode)
	}
}

func TestProfileItemActiveIndicator(t *testing.T) {
	active := ProfileItem{profile: domain.Profile{Name: "prod", IsActive: true}}
	inactive := ProfileItem{profile: domain.Profile{Name: "dev"}}

	if got := active.Title(); got != "● prod" {
		t.Errorf("unexpected active title: %q", got)
	}
	if got := inactive.Title(); got != "  dev" {
		t.Errorf("unexpected inactive title: %q", got)
	}
}
