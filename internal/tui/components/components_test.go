package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/twitchpanel/internal/domain"
)

func streams(names ...string) []domain.StreamInfo {
	out := make([]domain.StreamInfo, len(names))
	for i, n := range names {
		out[i] = domain.StreamInfo{StreamerID: n, Login: strings.ToLower(n), DisplayName: n, GameName: "Just Chatting"}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDirectoryKeepsCursorOnStreamer(t *testing.T) {
	d := NewDirectory()
	d.SetSize(36, 30)
	d.SetFocused(true)
	d.SetStreams(streams("Alpha", "Bravo", "Charlie"), domain.SelectionState{})

	d.Update(runes("j"))
	d.Update(runes("j"))
	if s, _ := d.Focused(); s.StreamerID != "Charlie" {
		t.Fatalf("focused = %s", s.StreamerID)
	}

	// Charlie moves to the top of the next poll
	d.SetStreams(streams("Charlie", "Alpha"), domain.SelectionState{})
	if s, _ := d.Focused(); s.StreamerID != "Charlie" {
		t.Errorf("focused after refresh = %s, want Charlie", s.StreamerID)
	}

	// Focused stream went offline: cursor clamps
	d.SetStreams(streams("Alpha"), domain.SelectionState{})
	if s, ok := d.Focused(); !ok || s.StreamerID != "Alpha" {
		t.Errorf("focused after offline = %s, %v", s.StreamerID, ok)
	}
}

func TestDirectoryFilter(t *testing.T) {
	d := NewDirectory()
	d.SetSize(36, 30)
	d.SetFocused(true)
	d.SetStreams(streams("Alpha", "Bravo", "Charlie"), domain.SelectionState{})

	d.ToggleFilter()
	for _, r := range "brv" {
		d.Update(runes(string(r)))
	}
	if d.Count() != 1 {
		t.Fatalf("matches = %d, want 1", d.Count())
	}
	if s, _ := d.Focused(); s.StreamerID != "Bravo" {
		t.Errorf("focused = %s", s.StreamerID)
	}
	if !strings.Contains(d.View(), "[1/3]") {
		t.Error("filter bar missing match count")
	}

	d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if d.IsFilterTyping() || !d.IsFiltering() {
		t.Error("enter should keep the filter but leave typing mode")
	}
	d.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if d.IsFiltering() || d.Count() != 3 {
		t.Errorf("esc left filtering = %v, count = %d", d.IsFiltering(), d.Count())
	}
}

func TestDirectoryMarksSelectionAndChat(t *testing.T) {
	d := NewDirectory()
	d.SetSize(40, 20)
	d.SetStreams(streams("Alpha", "Bravo"), domain.SelectionState{Selected: []string{"Bravo"}, ChatTarget: "Bravo"})

	out := d.View()
	lines := strings.Split(out, "\n")
	var bravo string
	for _, l := range lines {
		if strings.Contains(l, "Bravo") {
			bravo = l
		}
	}
	if !strings.Contains(bravo, "▣") {
		t.Errorf("selected marker missing: %q", bravo)
	}
	if !strings.Contains(out, "Just Chatting") {
		t.Error("game line missing")
	}
}

func TestGridCursorMovesByRow(t *testing.T) {
	g := NewGrid(16.0/9.0, 2)
	g.SetSize(120, 40)
	g.SetFocused(true)
	g.SetStreams(streams("A", "B", "C", "D"), "")

	grid := g.Layout()
	if grid.Columns != 2 || grid.Rows != 2 {
		t.Fatalf("grid = %dx%d, want 2x2", grid.Columns, grid.Rows)
	}

	g.Update(runes("j"))
	if s, _ := g.Focused(); s.StreamerID != "C" {
		t.Errorf("down from A = %s, want C", s.StreamerID)
	}
	g.Update(runes("l"))
	if s, _ := g.Focused(); s.StreamerID != "D" {
		t.Errorf("right from C = %s, want D", s.StreamerID)
	}
	g.Update(runes("j"))
	if s, _ := g.Focused(); s.StreamerID != "D" {
		t.Errorf("down from last row moved to %s", s.StreamerID)
	}

	g.SetStreams(streams("A"), "")
	if s, _ := g.Focused(); s.StreamerID != "A" {
		t.Errorf("cursor not clamped: %s", s.StreamerID)
	}
}

func TestGridViewFitsContainer(t *testing.T) {
	g := NewGrid(16.0/9.0, 2)
	g.SetSize(100, 30)
	g.SetStreams(streams("Alpha", "Bravo", "Charlie"), "Bravo")

	out := g.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 30 {
		t.Errorf("rendered %d lines, want 30", len(lines))
	}
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		if !strings.Contains(out, name) {
			t.Errorf("tile %s missing", name)
		}
	}

	empty := NewGrid(16.0/9.0, 2)
	if empty.View() != "" {
		t.Error("zero-sized grid rendered content")
	}
}

func TestChatPanelScrollback(t *testing.T) {
	c := NewChatPanel()
	c.SetSize(40, 20)
	c.SetChannel("alpha")

	for i := 0; i < ChatScrollback+10; i++ {
		c.Append(domain.ChatMessage{Channel: "alpha", User: "u", Text: "msg", Time: time.Unix(int64(i), 0)})
	}
	if c.Len() != ChatScrollback {
		t.Errorf("buffered %d, want %d", c.Len(), ChatScrollback)
	}

	c.Append(domain.ChatMessage{Channel: "bravo", User: "u", Text: "elsewhere"})
	if c.Len() != ChatScrollback {
		t.Error("message for another channel was kept")
	}

	c.SetChannel("bravo")
	if c.Len() != 0 {
		t.Errorf("switching channel kept %d messages", c.Len())
	}
	if !strings.Contains(c.View(), "connecting") {
		t.Error("new channel should show connecting status")
	}
}
