package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/twitchpanel/internal/tui/styles"
)

// View renders the current UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	l := m.calculatePanelLayout()
	var panels []string
	if l.sidebarWidth > 0 {
		panels = append(panels, m.Directory.View())
	}
	panels = append(panels, m.Grid.View())
	if l.chatWidth > 0 {
		panels = append(panels, m.ChatPanel.View())
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	if m.State == StateAuthRequired {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderAuthRequired())
	}
	return view
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	room := max(m.Width-lipgloss.Width(right)-1, 0)

	var left string
	switch {
	case m.Loading || m.Authorizing:
		text := "Refreshing streams..."
		if m.Authorizing {
			text = "Waiting for authorization..."
		}
		spinner := styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)]
		left = styles.SpinnerStyle.Render(spinner) + " " + styles.DimStyle.Render(styles.Truncate(text, max(room-2, 0)))
	case m.StatusMsg != "":
		style := styles.DimStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		left = style.Render(styles.Truncate(m.StatusMsg, room))
	case !m.LastPoll.IsZero():
		text := fmt.Sprintf("%d live · %d in grid · updated %s",
			m.view.Directory.Len(), len(m.view.Selected), m.LastPoll.Local().Format("15:04:05"))
		left = styles.DimStyle.Render(styles.Truncate(text, room))
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      GRID & CHAT
  j/k        Up/down               Space  Add/remove from grid
  h/l        Left/right in grid    c      Open/close chat
  g/G        First/last            Tab    Collapse sidebar
  Ctrl+u/d   Scroll half page      Ctrl+w Switch pane
  /          Filter

PLAYBACK                        OTHER
  p          Play in player        r      Refresh now
  P          Play grid tiled       L      Sign in again
  o          Open video embed      q      Quit
  O          Open chat embed       ?      This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderAuthRequired renders the expired-session modal
func (m Model) renderAuthRequired() string {
	body := `
        Twitch session expired

  Your access token is no longer valid.

    [L] Sign in again      [Q] Quit
`
	if m.Authorizing {
		body = `
        Twitch session expired

  Finish signing in in your browser...
`
	}
	return styles.ModalStyle.Render(body)
}
