package tui

// Layout constants
const (
	// Vertical layout: single footer line
	ChromeHeight = 1

	MinSidebarWidth = 20
	MinChatWidth    = 24
	MinGridWidth    = 20
)

// Pane identifies the panel with keyboard focus
type Pane int

const (
	PaneDirectory Pane = iota
	PaneGrid
	PaneChat
)

// panelLayout holds calculated panel widths for the View
type panelLayout struct {
	sidebarWidth int // 0 when collapsed
	gridWidth    int
	chatWidth    int // 0 when no chat is open
	height       int
}

// calculatePanelLayout splits the window into sidebar, grid and chat. The
// grid gets whatever the side panels leave; side panels shrink first.
func (m Model) calculatePanelLayout() panelLayout {
	l := panelLayout{height: max(m.Height-ChromeHeight, 0)}
	available := m.Width

	if !m.view.Collapsed {
		l.sidebarWidth = clampPanel(m.Config.SidebarWidth, MinSidebarWidth, available/2)
		available -= l.sidebarWidth
	}
	if m.view.ChatTarget != nil {
		l.chatWidth = clampPanel(m.Config.ChatWidth, MinChatWidth, available/2)
		available -= l.chatWidth
	}
	l.gridWidth = max(available, 0)

	// Too narrow for the grid: give it the side panels back
	if l.gridWidth < MinGridWidth && m.Width >= MinGridWidth {
		l.chatWidth = 0
		l.gridWidth = m.Width - l.sidebarWidth
		if l.gridWidth < MinGridWidth {
			l.sidebarWidth = 0
			l.gridWidth = m.Width
		}
	}
	return l
}

// clampPanel returns want, but no more than limit and no less than floor
// unless limit itself is below floor
func clampPanel(want, floor, limit int) int {
	w := min(want, limit)
	if w < floor {
		w = min(floor, limit)
	}
	return max(w, 0)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	l := m.calculatePanelLayout()
	m.Directory.SetSize(l.sidebarWidth, l.height)
	m.Grid.SetSize(l.gridWidth, l.height)
	m.ChatPanel.SetSize(l.chatWidth, l.height)

	// Keep focus on a visible pane
	switch {
	case m.Focus == PaneDirectory && l.sidebarWidth == 0:
		m.setFocus(PaneGrid)
	case m.Focus == PaneChat && l.chatWidth == 0:
		m.setFocus(PaneGrid)
	}
}

// visiblePanes returns the focusable panes in screen order
func (m Model) visiblePanes() []Pane {
	l := m.calculatePanelLayout()
	var panes []Pane
	if l.sidebarWidth > 0 {
		panes = append(panes, PaneDirectory)
	}
	panes = append(panes, PaneGrid)
	if l.chatWidth > 0 {
		panes = append(panes, PaneChat)
	}
	return panes
}

func (m *Model) setFocus(p Pane) {
	m.Focus = p
	m.Directory.SetFocused(p == PaneDirectory)
	m.Grid.SetFocused(p == PaneGrid)
	m.ChatPanel.SetFocused(p == PaneChat)
}

// cycleFocus moves focus to the next visible pane
func (m *Model) cycleFocus() {
	panes := m.visiblePanes()
	for i, p := range panes {
		if p == m.Focus {
			m.setFocus(panes[(i+1)%len(panes)])
			return
		}
	}
	m.setFocus(panes[0])
}
