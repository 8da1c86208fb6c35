package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/tui/styles"
)

// ChatScrollback is how many messages the panel keeps
const ChatScrollback = 500

// ChatPanel shows the read-only chat of the chat target
type ChatPanel struct {
	channel  string
	messages []domain.ChatMessage
	lines    []string // rendered messages at the current width
	status   string

	viewport viewport.Model
	width    int
	height   int
	focused  bool
}

// NewChatPanel creates an empty chat panel
func NewChatPanel() *ChatPanel {
	return &ChatPanel{
		viewport: viewport.New(0, 0),
	}
}

// SetChannel switches the panel to channel, dropping old scrollback
func (c *ChatPanel) SetChannel(channel string) {
	if channel == c.channel {
		return
	}
	c.channel = channel
	c.messages = nil
	c.lines = nil
	c.status = ""
	if channel != "" {
		c.status = "connecting..."
	}
	c.refresh(true)
}

// Channel returns the channel being shown
func (c *ChatPanel) Channel() string {
	return c.channel
}

// SetStatus sets the dim line shown under the title
func (c *ChatPanel) SetStatus(status string) {
	c.status = status
}

// Append adds a message, following the bottom when already there
func (c *ChatPanel) Append(msg domain.ChatMessage) {
	if msg.Channel != "" && !strings.EqualFold(msg.Channel, c.channel) {
		return
	}
	c.status = ""
	follow := c.viewport.AtBottom()

	c.messages = append(c.messages, msg)
	c.lines = append(c.lines, renderChatLine(msg, max(c.viewport.Width, 1)))
	if over := len(c.messages) - ChatScrollback; over > 0 {
		c.messages = append(c.messages[:0:0], c.messages[over:]...)
		c.lines = append(c.lines[:0:0], c.lines[over:]...)
	}
	c.refresh(follow)
}

// Len returns the number of buffered messages
func (c *ChatPanel) Len() int {
	return len(c.messages)
}

// SetSize sets the outer size of the panel
func (c *ChatPanel) SetSize(width, height int) {
	c.width = width
	c.height = height

	frameW, frameH := styles.InactiveBorder.GetFrameSize()
	rewrap := c.viewport.Width != max(width-frameW, 0)
	c.viewport.Width = max(width-frameW, 0)
	// Title and status lines
	c.viewport.Height = max(height-frameH-2, 0)
	if rewrap {
		c.lines = c.lines[:0]
		for _, msg := range c.messages {
			c.lines = append(c.lines, renderChatLine(msg, max(c.viewport.Width, 1)))
		}
	}
	c.refresh(true)
}

// SetFocused sets keyboard focus; a focused panel scrolls
func (c *ChatPanel) SetFocused(focused bool) {
	c.focused = focused
}

// Update scrolls the viewport
func (c *ChatPanel) Update(msg tea.Msg) tea.Cmd {
	if !c.focused {
		return nil
	}
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

// View renders the panel inside a border
func (c *ChatPanel) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	innerW := max(c.width-frameW, 0)

	title := styles.AccentStyle.Render(styles.Truncate("Chat · "+c.channel, innerW))
	status := styles.DimStyle.Render(styles.Truncate(c.status, innerW))

	return style.
		Width(innerW).
		Height(max(c.height-frameH, 0)).
		Render(title + "\n" + status + "\n" + c.viewport.View())
}

func (c *ChatPanel) refresh(follow bool) {
	c.viewport.SetContent(strings.Join(c.lines, "\n"))
	if follow {
		c.viewport.GotoBottom()
	}
}

func renderChatLine(msg domain.ChatMessage, width int) string {
	stamp := ""
	if !msg.Time.IsZero() {
		stamp = styles.DimStyle.Render(msg.Time.Local().Format("15:04")) + " "
	}

	if msg.System {
		return lipgloss.NewStyle().Width(width).Render(stamp + styles.DimStyle.Italic(true).Render(msg.Text))
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TwitchPurple)
	if msg.Color != "" {
		nameStyle = nameStyle.Foreground(lipgloss.Color(msg.Color))
	}
	return lipgloss.NewStyle().Width(width).Render(stamp + nameStyle.Render(msg.User) + ": " + msg.Text)
}
