package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/search"
	"github.com/mmcdole/twitchpanel/internal/tui/styles"
)

// Layout constants for bordered panels
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Each stream takes a name line and a game/title line
	directoryRowHeight = 2
)

// Directory is the scrollable list of live followed channels
type Directory struct {
	streams   []domain.StreamInfo
	selection domain.SelectionState

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	loading bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	matches      []search.Match // nil when no query
}

// NewDirectory creates an empty directory list
func NewDirectory() *Directory {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &Directory{
		filterInput: ti,
		loading:     true,
	}
}

// SetStreams replaces the directory contents. The cursor stays on the same
// streamer when it is still live.
func (d *Directory) SetStreams(streams []domain.StreamInfo, selection domain.SelectionState) {
	var current string
	if s, ok := d.Focused(); ok {
		current = s.StreamerID
	}

	d.streams = streams
	d.selection = selection
	d.loading = false
	if d.filterActive {
		d.applyFilter(false)
	}

	count := d.Count()
	d.cursor = min(d.cursor, max(count-1, 0))
	for i := 0; i < count; i++ {
		if d.streams[d.mapIndex(i)].StreamerID == current {
			d.cursor = i
			break
		}
	}
	d.ensureVisible()
}

// SetSelection updates the selected and chat markers
func (d *Directory) SetSelection(selection domain.SelectionState) {
	d.selection = selection
}

// Update handles navigation and filter keys
func (d *Directory) Update(msg tea.Msg) tea.Cmd {
	if !d.focused {
		return nil
	}

	// Filter input typing mode
	if d.filterActive && d.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				d.clearFilter()
				return nil
			case "enter":
				// Accept filter, blur input to allow navigation
				d.filterInput.Blur()
				return nil
			case "backspace":
				if d.filterInput.Value() == "" {
					d.clearFilter()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		d.filterInput, cmd = d.filterInput.Update(msg)
		d.applyFilter(true)
		return cmd
	}

	// Filter applied but blurred
	if d.filterActive {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				d.clearFilter()
				return nil
			case "/":
				d.filterInput.Focus()
				return nil
			}
		}
	}

	count := d.Count()
	if count == 0 {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "down":
			if d.cursor < count-1 {
				d.cursor++
				d.ensureVisible()
			}
		case "k", "up":
			if d.cursor > 0 {
				d.cursor--
				d.ensureVisible()
			}
		case "g", "home":
			d.cursor = 0
			d.offset = 0
		case "G", "end":
			d.cursor = count - 1
			d.ensureVisible()
		case "ctrl+d":
			d.cursor = min(d.cursor+max(d.maxVisible/2, 1), count-1)
			d.ensureVisible()
		case "ctrl+u":
			d.cursor = max(d.cursor-max(d.maxVisible/2, 1), 0)
			d.ensureVisible()
		}
	}
	return nil
}

// View renders the list inside a border
func (d *Directory) View() string {
	style := styles.InactiveBorder
	if d.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(d.width-frameW, 0)).
		Height(max(d.height-frameH, 0)).
		Render(d.renderContent())
}

// SetSize sets the outer size of the panel
func (d *Directory) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.recalcMaxVisible()
	d.ensureVisible()
}

// SetFocused sets keyboard focus
func (d *Directory) SetFocused(focused bool) {
	d.focused = focused
}

// IsFocused reports keyboard focus
func (d *Directory) IsFocused() bool {
	return d.focused
}

// Focused returns the stream under the cursor
func (d *Directory) Focused() (domain.StreamInfo, bool) {
	if d.Count() == 0 {
		return domain.StreamInfo{}, false
	}
	return d.streams[d.mapIndex(d.cursor)], true
}

// Count returns the number of visible rows
func (d *Directory) Count() int {
	if d.matches != nil {
		return len(d.matches)
	}
	return len(d.streams)
}

// ToggleFilter activates the filter input
func (d *Directory) ToggleFilter() {
	d.filterActive = true
	d.filterInput.Focus()
	d.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (d *Directory) IsFiltering() bool {
	return d.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (d *Directory) IsFilterTyping() bool {
	return d.filterActive && d.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all streams
func (d *Directory) ClearFilter() {
	d.clearFilter()
}

func (d *Directory) recalcMaxVisible() {
	// Title line plus both scroll indicators
	interior := d.height - BorderHeight - ScrollIndicatorLines - 1
	if d.filterActive {
		interior--
	}
	d.maxVisible = max(interior/directoryRowHeight, 1)
}

func (d *Directory) ensureVisible() {
	if d.maxVisible <= 0 {
		return
	}
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+d.maxVisible {
		d.offset = d.cursor - d.maxVisible + 1
	}
}

func (d *Directory) clearFilter() {
	d.filterActive = false
	d.matches = nil
	d.filterInput.SetValue("")
	d.filterInput.Blur()
	d.recalcMaxVisible()
	d.ensureVisible()
}

// applyFilter recomputes matches; reset moves the cursor to the best match
func (d *Directory) applyFilter(reset bool) {
	query := strings.TrimSpace(d.filterInput.Value())
	if query == "" {
		d.matches = nil
	} else {
		d.matches = search.Filter(query, d.streams)
		if d.matches == nil {
			d.matches = []search.Match{}
		}
	}

	if reset {
		d.cursor = 0
		d.offset = 0
	}
}

func (d *Directory) mapIndex(i int) int {
	if d.matches != nil {
		return d.matches[i].Index
	}
	return i
}

func (d *Directory) renderContent() string {
	itemWidth := max(d.width-BorderWidth, 10)

	title := fmt.Sprintf("Following · %d live", len(d.streams))
	titleLine := styles.AccentStyle.Render(styles.Truncate(title, itemWidth))

	if d.loading {
		return titleLine + "\n \n" + styles.DimStyle.Render("Loading streams...")
	}

	count := d.Count()
	if count == 0 {
		empty := "No followed channels are live"
		if d.filterActive && d.filterInput.Value() != "" {
			empty = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(empty)
		if d.filterActive {
			content += "\n" + d.renderFilterBar()
		}
		return content
	}

	end := min(d.offset+d.maxVisible, count)
	var lines []string
	for i := d.offset; i < end; i++ {
		var highlight []int
		if d.matches != nil && d.matches[i].Field == search.FieldName {
			highlight = d.matches[i].MatchedIndexes
		}
		lines = append(lines, d.renderStream(d.streams[d.mapIndex(i)], highlight, i == d.cursor, itemWidth)...)
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if d.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if d.filterActive {
		content += "\n" + d.renderFilterBar()
	}
	return content
}

func (d *Directory) renderStream(s domain.StreamInfo, highlight []int, selected bool, width int) []string {
	marker := "  "
	var markerFg *lipgloss.Color
	if d.selection.IsSelected(s.StreamerID) {
		marker = styles.SelectedChar + " "
		markerFg = &styles.TwitchPurple
	}

	viewers := styles.LiveChar + " " + s.FormattedViewers()
	chat := ""
	if d.selection.ChatTarget == s.StreamerID {
		chat = " " + styles.ChatChar
	}

	nameWidth := width - 2 - lipgloss.Width(marker) - lipgloss.Width(viewers) - lipgloss.Width(chat) - 1
	name := styles.Truncate(s.Name(), max(nameWidth, 1))
	if len(highlight) > 0 && !selected {
		name = styles.Highlight(name, highlight, styles.MatchHighlightStyle, styles.NormalItemStyle)
	}
	gap := max(nameWidth-lipgloss.Width(name), 0) + 1

	first := styles.RenderListRow([]styles.RowPart{
		{Text: marker, Foreground: markerFg},
		{Text: name},
		{Text: chat, Foreground: &styles.Green},
		{Text: strings.Repeat(" ", gap)},
		{Text: viewers, Foreground: &styles.LiveRed},
	}, selected, width)

	detail := s.GameName
	if s.Title != "" {
		if detail != "" {
			detail += " — "
		}
		detail += s.Title
	}
	second := styles.RenderListRow([]styles.RowPart{
		{Text: "  " + styles.Truncate(detail, max(width-4, 1)), Foreground: &styles.DimGray},
	}, selected, width)

	return []string{first, second}
}

func (d *Directory) renderFilterBar() string {
	bar := d.filterInput.View()
	if d.filterInput.Value() != "" {
		bar += styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", d.Count(), len(d.streams)))
	}
	return bar
}
