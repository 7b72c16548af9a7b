package carousel

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/factlog/pkg/fact"
	"tableflip.dev/factlog/pkg/store"
	"tableflip.dev/factlog/pkg/traverser"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;:]*[A-Za-z~]`)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.Local)
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "ctrl+s":
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Text: s, Code: r}
}

func newModel(t *testing.T, stored, working []*fact.Fact) *Model {
	t.Helper()
	mem := store.NewMemory(stored, store.WithClock(func() time.Time { return at(18, 0) }))
	s, err := traverser.NewEditSession(mem, working, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.StandUp(context.Background()); err != nil {
		t.Fatalf("stand up: %v", err)
	}
	return New(context.Background(), s, Options{Nudge: 5 * time.Minute, NudgeBig: time.Hour})
}

func send(t *testing.T, m *Model, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(press(k))
	}
	return cmd
}

func imported() []*fact.Fact {
	return []*fact.Fact{
		fact.New(-1, at(8, 0), at(9, 0), "email"),
		fact.New(-2, at(9, 0), at(10, 0), "review"),
	}
}

func TestNavigationAndView(t *testing.T) {
	m := newModel(t, nil, imported())
	if got := m.session.CurrentFact().PK; got != -1 {
		t.Fatalf("expected to start on the first new fact, got %d", got)
	}
	if !strings.Contains(m.status, "1 new facts") {
		t.Fatalf("unexpected status %q", m.status)
	}

	send(t, m, "l")
	if got := m.session.CurrentFact().PK; got != -2 {
		t.Fatalf("expected fact -2, got %d", got)
	}
	view := m.View()
	for _, want := range []string{"review", "09:00 → 10:00", "1h00m", "fact 2 of 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}

	send(t, m, "left")
	if got := m.session.CurrentFact().PK; got != -1 {
		t.Fatalf("expected fact -1, got %d", got)
	}
}

func TestNudgeKeys(t *testing.T) {
	m := newModel(t, nil, imported())
	send(t, m, "l", "[")
	cur := m.session.CurrentFact()
	if !cur.Start.Equal(at(8, 55)) {
		t.Fatalf("expected start 08:55, got %v", cur.Start)
	}
	if prev := m.session.Engine().Lookup(-1); !prev.End.Equal(at(8, 55)) {
		t.Fatalf("expected previous end 08:55, got %v", prev.End)
	}

	send(t, m, "b", "}")
	if got := m.session.CurrentFact().End; !got.Equal(at(11, 0)) {
		t.Fatalf("expected big step end 11:00, got %v", got)
	}

	send(t, m, "u", "u")
	cur = m.session.CurrentFact()
	if !cur.Start.Equal(at(9, 0)) || !cur.End.Equal(at(10, 0)) {
		t.Fatalf("expected undo back to 09:00-10:00, got %s", cur)
	}
	send(t, m, "u")
	if m.status != "nothing to undo" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestShiftKeys(t *testing.T) {
	m := newModel(t, nil, imported())
	send(t, m, "l", ">")
	e := m.session.Engine()
	cur := e.Lookup(-2)
	if !cur.Start.Equal(at(9, 5)) || !cur.End.Equal(at(10, 5)) {
		t.Fatalf("expected 09:05-10:05, got %s", cur)
	}
	if prev := e.Lookup(-1); !prev.End.Equal(at(9, 5)) {
		t.Fatalf("expected previous end 09:05, got %v", prev.End)
	}
	if !strings.HasPrefix(m.status, "fact ") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if got := m.session.History().UndoLen(); got != 1 {
		t.Fatalf("expected one undo entry, got %d", got)
	}

	send(t, m, "u")
	cur = e.Lookup(-2)
	if !cur.Start.Equal(at(9, 0)) || !cur.End.Equal(at(10, 0)) {
		t.Fatalf("expected undo back to 09:00-10:00, got %s", cur)
	}

	send(t, m, "<")
	if cur = e.Lookup(-2); !cur.Start.Equal(at(8, 55)) || !cur.End.Equal(at(9, 55)) {
		t.Fatalf("expected 08:55-09:55, got %s", cur)
	}
}

func TestCopyPartKeys(t *testing.T) {
	first := fact.New(-1, at(8, 0), at(9, 0), "email")
	first.Category = "work"
	first.Tags = []string{"inbox"}
	first.Description = "triage"
	m := newModel(t, nil, []*fact.Fact{first, fact.New(-2, at(9, 0), at(10, 0), "review")})

	send(t, m, "T", "l", "p")
	edit := m.session.CurrentEdit()
	if m.status != "pasted tags" || len(edit.Tags) != 1 || edit.Tags[0] != "inbox" {
		t.Fatalf("expected tags pasted, got %q %v", m.status, edit.Tags)
	}
	if edit.Activity != "review" || edit.Description != "" {
		t.Fatalf("expected only tags to change, got %s", edit)
	}

	send(t, m, "h", "D", "l", "p")
	if edit = m.session.CurrentEdit(); m.status != "pasted description" || edit.Description != "triage" {
		t.Fatalf("expected description pasted, got %q %q", m.status, edit.Description)
	}

	send(t, m, "h", "A", "l", "p")
	edit = m.session.CurrentEdit()
	if m.status != "pasted activity" || edit.Activity != "email" || edit.Category != "work" {
		t.Fatalf("expected activity pasted, got %q %s", m.status, edit)
	}
}

func TestSaveRequiresReview(t *testing.T) {
	m := newModel(t, nil, imported())
	if cmd := send(t, m, "ctrl+s"); cmd != nil {
		t.Fatal("expected save to be refused")
	}
	if !strings.Contains(m.status, "1 to go") {
		t.Fatalf("unexpected status %q", m.status)
	}

	send(t, m, "right")
	cmd := send(t, m, "ctrl+s")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.Outcome() != Save {
		t.Fatalf("expected Save outcome")
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t, nil, imported())
	cmd := send(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.Outcome() != Quit {
		t.Fatalf("expected Quit outcome")
	}
}

func TestDeleteAndDiff(t *testing.T) {
	stored := []*fact.Fact{fact.New(1, at(8, 0), at(9, 0), "email")}
	working := []*fact.Fact{fact.New(1, at(8, 0), at(9, 0), "email")}
	m := newModel(t, stored, working)

	send(t, m, "x")
	if !m.session.CurrentFact().Deleted {
		t.Fatal("expected fact to be deleted")
	}
	view := m.View()
	if !strings.Contains(view, "deleted") || !strings.Contains(view, "1 unsaved") {
		t.Fatalf("expected deletion in view:\n%s", view)
	}

	send(t, m, "x")
	if m.session.IsDirty() {
		t.Fatal("expected restore to leave nothing to save")
	}
}

func TestCopyPasteKeys(t *testing.T) {
	m := newModel(t, nil, imported())
	send(t, m, "p")
	if m.status != "nothing copied" {
		t.Fatalf("unexpected status %q", m.status)
	}
	send(t, m, "y", "l", "p")
	if got := m.session.CurrentEdit().Activity; got != "email" {
		t.Fatalf("expected pasted activity, got %q", got)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newModel(t, nil, imported())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	send(t, m, "?")
	if m.overlay == nil {
		t.Fatal("expected help overlay")
	}
	if view := ansiPattern.ReplaceAllString(m.View(), ""); !strings.Contains(view, "previous fact") {
		t.Fatalf("expected help content:\n%s", view)
	}
	// Keys go to the overlay while it is open.
	send(t, m, "l")
	if got := m.session.CurrentFact().PK; got != -1 {
		t.Fatalf("expected cursor to stay, got %d", got)
	}
	send(t, m, "esc")
	if m.overlay != nil {
		t.Fatal("expected overlay to close")
	}
}

func TestExternalChange(t *testing.T) {
	m := newModel(t, nil, imported())
	m.Update(ExternalChangeMsg{PK: 7})
	if !strings.Contains(m.View(), "fact #7 changed on disk") {
		t.Fatalf("expected change notice:\n%s", m.View())
	}
}
