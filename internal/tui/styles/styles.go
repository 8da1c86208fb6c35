package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	TwitchPurple = lipgloss.Color("#9146FF")
	SlateDark    = lipgloss.Color("#1F2937")
	SlateLight   = lipgloss.Color("#374151")
	DimGray      = lipgloss.Color("#6B7280")
	LightGray    = lipgloss.Color("#9CA3AF")
	White        = lipgloss.Color("#F9FAFB")
	Green        = lipgloss.Color("#10B981")
	Red          = lipgloss.Color("#EF4444")
	LiveRed      = lipgloss.Color("#EB0400")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TwitchPurple)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(TwitchPurple)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Raw indicator characters (unstyled)
const (
	LiveChar     = "●"
	SelectedChar = "▣"
	ChatChar     = "💬"
)

// Pre-rendered indicators
var (
	LiveDot      = lipgloss.NewStyle().Foreground(LiveRed).Render(LiveChar)
	SelectedMark = lipgloss.NewStyle().Foreground(TwitchPurple).Render(SelectedChar)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Tile styles
var (
	TileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)

	TileFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(TwitchPurple)

	TileChatStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Green)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TwitchPurple).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(TwitchPurple)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(TwitchPurple)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(TwitchPurple).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(TwitchPurple).
				Bold(true)
)

// SpinnerFrames is the braille spinner used while polling
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerStyle colors the spinner
var SpinnerStyle = lipgloss.NewStyle().Foreground(TwitchPurple)

// Truncate shortens s to width cells with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Pad pads s with spaces to width cells
func Pad(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// Highlight renders the runes at positions with style, the rest with base
func Highlight(s string, positions []int, style, base lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(s)
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if marked[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// RowPart is one segment of a list row; nil Foreground inherits the row color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}

// RenderListRow renders parts as one row of width cells with a one-cell
// margin on each side. Selected rows get the highlight background across the
// full width.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	base := lipgloss.NewStyle()
	if selected {
		base = base.Background(SlateLight)
	}

	var b strings.Builder
	b.WriteString(base.Render(" "))
	used := 0
	for _, part := range parts {
		style := base
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		b.WriteString(style.Render(part.Text))
		used += lipgloss.Width(part.Text)
	}

	if pad := width - used - 2; pad > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", pad)))
	}
	b.WriteString(base.Render(" "))
	return b.String()
}
