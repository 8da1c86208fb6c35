package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg processes keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		// Any key closes help
		m.State = StateBrowsing
		return m, nil
	case StateAuthRequired:
		return m.handleAuthRequiredKeys(msg)
	}

	// Filter typing swallows everything
	if m.Directory.IsFilterTyping() {
		return m, m.Directory.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Filter):
		if m.view.Collapsed {
			return m, nil
		}
		m.setFocus(PaneDirectory)
		if m.Directory.IsFiltering() {
			return m, m.Directory.Update(msg)
		}
		m.Directory.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Directory.IsFiltering() {
			m.Directory.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.NextPane):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, Keys.Select):
		if s, ok := m.focusedStream(); ok {
			m.SessionSvc.ToggleSelect(s.StreamerID)
			m.syncView()
		}
		return m, nil

	case key.Matches(msg, Keys.Chat):
		if s, ok := m.focusedStream(); ok {
			m.SessionSvc.ToggleChat(s.StreamerID)
			m.syncView()
		}
		return m, nil

	case key.Matches(msg, Keys.Collapse):
		m.SessionSvc.ToggleCollapsed()
		m.syncView()
		if !m.view.Collapsed && m.Focus == PaneGrid {
			m.setFocus(PaneDirectory)
		}
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		m.Loading = true
		m.PollerSvc.Refresh()
		return m, nil

	case key.Matches(msg, Keys.Play):
		if s, ok := m.focusedStream(); ok {
			return m, PlayCmd(m.PlaybackSvc, s)
		}
		return m, nil

	case key.Matches(msg, Keys.PlayAll):
		if len(m.view.Selected) == 0 {
			return m, func() tea.Msg {
				return StatusMsg{Message: "No streams in the grid", IsError: true}
			}
		}
		return m, PlayTiledCmd(m.PlaybackSvc, m.view.Selected)

	case key.Matches(msg, Keys.OpenVideo):
		if s, ok := m.focusedStream(); ok {
			return m, OpenEmbedCmd(m.PlaybackSvc, s, false)
		}
		return m, nil

	case key.Matches(msg, Keys.OpenChat):
		if s, ok := m.focusedStream(); ok {
			return m, OpenEmbedCmd(m.PlaybackSvc, s, true)
		}
		return m, nil

	case key.Matches(msg, Keys.Reauth):
		return m.startReauth()
	}

	// Remaining keys navigate the focused pane
	switch m.Focus {
	case PaneGrid:
		return m, m.Grid.Update(msg)
	case PaneChat:
		return m, m.ChatPanel.Update(msg)
	default:
		return m, m.Directory.Update(msg)
	}
}

// handleAuthRequiredKeys handles input while the token is invalid
func (m Model) handleAuthRequiredKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Reauth), msg.String() == "enter":
		return m.startReauth()
	}
	return m, nil
}

func (m Model) startReauth() (tea.Model, tea.Cmd) {
	if m.Authorizing {
		return m, nil
	}
	m.Authorizing = true
	m.StatusMsg = "Waiting for authorization in the browser..."
	m.StatusIsErr = false
	return m, ReauthCmd(m.AuthSvc, m.PollerSvc)
}
