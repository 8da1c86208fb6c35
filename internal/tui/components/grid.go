package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
	"github.com/mmcdole/twitchpanel/internal/tui/styles"
)

// Smallest tile that still fits a border around one character
const (
	minTileWidth  = 3
	minTileHeight = 3
)

// Grid renders the selected streams as tiles packed by the layout engine
type Grid struct {
	streams    []domain.StreamInfo // selection order
	chatTarget string

	aspectRatio float64 // video aspect ratio (width/height)
	cellAspect  float64 // terminal cell height / width

	cursor  int
	width   int
	height  int
	focused bool
}

// NewGrid creates an empty grid. cellAspect corrects for terminal cells
// being taller than they are wide.
func NewGrid(aspectRatio, cellAspect float64) *Grid {
	return &Grid{
		aspectRatio: aspectRatio,
		cellAspect:  cellAspect,
	}
}

// SetStreams replaces the tiles. The cursor is clamped to the new count.
func (g *Grid) SetStreams(streams []domain.StreamInfo, chatTarget string) {
	g.streams = streams
	g.chatTarget = chatTarget
	g.cursor = min(g.cursor, max(len(streams)-1, 0))
}

// SetSize sets the container size in cells
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// SetFocused sets keyboard focus
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// Focused returns the stream under the tile cursor
func (g *Grid) Focused() (domain.StreamInfo, bool) {
	if len(g.streams) == 0 {
		return domain.StreamInfo{}, false
	}
	return g.streams[g.cursor], true
}

// Layout returns the tile geometry for the current streams and size
func (g *Grid) Layout() layout.Grid {
	return layout.Compute(len(g.streams), g.aspectRatio*g.cellAspect, float64(g.width), float64(g.height))
}

// Update moves the tile cursor. Vertical moves jump a whole row.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	if !g.focused || len(g.streams) == 0 {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	columns := max(g.Layout().Columns, 1)
	last := len(g.streams) - 1
	switch keyMsg.String() {
	case "l", "right":
		g.cursor = min(g.cursor+1, last)
	case "h", "left":
		g.cursor = max(g.cursor-1, 0)
	case "j", "down":
		if g.cursor+columns <= last {
			g.cursor += columns
		}
	case "k", "up":
		if g.cursor-columns >= 0 {
			g.cursor -= columns
		}
	case "g", "home":
		g.cursor = 0
	case "G", "end":
		g.cursor = last
	}
	return nil
}

// View renders the tiles centered in the container
func (g *Grid) View() string {
	if g.width <= 0 || g.height <= 0 {
		return ""
	}
	if len(g.streams) == 0 {
		return lipgloss.Place(g.width, g.height, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render("Select streams with space to watch them here"))
	}

	grid := g.Layout()
	cells := grid.Cells()
	dx, dy := grid.Offset(float64(g.width), float64(g.height))

	rows := make([][]int, grid.Rows)
	for _, t := range grid.Tiles {
		rows[t.Row] = append(rows[t.Row], t.Index)
	}

	lines := make([]string, 0, g.height)
	for i := 0; i < int(dy); i++ {
		lines = append(lines, "")
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		boxes := make([]string, 0, len(row))
		for _, idx := range row {
			boxes = append(boxes, g.renderTile(idx, cells[idx]))
		}
		indent := strings.Repeat(" ", int(dx)+cells[row[0]].X)
		for _, line := range strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, boxes...), "\n") {
			lines = append(lines, indent+line)
		}
	}
	if len(lines) > g.height {
		lines = lines[:g.height]
	}

	return lipgloss.Place(g.width, g.height, lipgloss.Left, lipgloss.Top, strings.Join(lines, "\n"))
}

func (g *Grid) renderTile(idx int, cell layout.Rect) string {
	if cell.Width < minTileWidth || cell.Height < minTileHeight {
		return lipgloss.NewStyle().Width(max(cell.Width, 0)).Height(max(cell.Height, 0)).Render("")
	}

	s := g.streams[idx]
	style := styles.TileStyle
	switch {
	case g.focused && idx == g.cursor:
		style = styles.TileFocusedStyle
	case s.StreamerID == g.chatTarget:
		style = styles.TileChatStyle
	}

	frameW, frameH := style.GetFrameSize()
	innerW := cell.Width - frameW
	innerH := cell.Height - frameH

	name := styles.TitleStyle.Render(styles.Truncate(s.Name(), innerW))
	content := []string{
		name,
		lipgloss.NewStyle().Foreground(styles.LiveRed).Render(styles.Truncate(styles.LiveChar+" "+s.FormattedViewers(), innerW)),
		styles.SubtitleStyle.Render(styles.Truncate(s.GameName, innerW)),
		styles.DimStyle.Render(styles.Truncate(s.Title, innerW)),
	}
	if len(content) > innerH {
		content = content[:innerH]
	}

	return style.
		Width(innerW).
		Height(innerH).
		Render(strings.Join(content, "\n"))
}
