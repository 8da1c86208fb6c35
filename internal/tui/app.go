package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/service"
	"github.com/mmcdole/twitchpanel/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateAuthRequired
	StateHelp
)

// Config holds the presentation settings
type Config struct {
	AspectRatio  float64 // video aspect ratio (width/height)
	CellAspect   float64 // terminal cell height / width
	SidebarWidth int
	ChatWidth    int
}

// Services are the collaborators the model drives
type Services struct {
	Session  *service.SessionService
	Poller   *service.Poller
	Chat     *service.ChatService
	Playback *service.PlaybackService
	Auth     *service.AuthService
	Logger   *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	SessionSvc  *service.SessionService
	PollerSvc   *service.Poller
	ChatSvc     *service.ChatService
	PlaybackSvc *service.PlaybackService
	AuthSvc     *service.AuthService
	logger      *slog.Logger

	// UI Components
	Directory *components.Directory
	Grid      *components.Grid
	ChatPanel *components.ChatPanel
	Focus     Pane

	Config Config

	// Last committed session state
	view service.SessionView

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Loading      bool
	Authorizing  bool
	SpinnerFrame int
	LastPoll     time.Time

	// ctx scopes chat connections; cancelled on teardown
	ctx context.Context
}

// NewModel creates a new application model
func NewModel(ctx context.Context, svc Services, cfg Config) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		State:       StateBrowsing,
		SessionSvc:  svc.Session,
		PollerSvc:   svc.Poller,
		ChatSvc:     svc.Chat,
		PlaybackSvc: svc.Playback,
		AuthSvc:     svc.Auth,
		logger:      logger,
		Directory:   components.NewDirectory(),
		Grid:        components.NewGrid(cfg.AspectRatio, cfg.CellAspect),
		ChatPanel:   components.NewChatPanel(),
		Config:      cfg,
		Loading:     true,
		ctx:         ctx,
	}
	m.view = m.SessionSvc.View()
	if m.view.Collapsed {
		m.setFocus(PaneGrid)
	} else {
		m.setFocus(PaneDirectory)
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForPollCmd(m.PollerSvc.Results()),
		WaitForChatCmd(m.ChatSvc.Events()),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case PollResultMsg:
		return m.handlePollResult(msg.Result)

	case ChatEventMsg:
		m.handleChatEvent(msg.Event)
		return m, WaitForChatCmd(m.ChatSvc.Events())

	case AuthCompleteMsg:
		m.Authorizing = false
		m.Loading = true
		m.State = StateBrowsing
		m.StatusMsg = "Signed in as " + msg.Token.Login
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case PlaybackStartedMsg:
		if len(msg.Streams) == 1 {
			m.StatusMsg = "Playing " + msg.Streams[0].Name()
		} else {
			m.StatusMsg = fmt.Sprintf("Playing %d streams", len(msg.Streams))
		}
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case EmbedOpenedMsg:
		what := "video"
		if msg.Chat {
			what = "chat"
		}
		m.StatusMsg = fmt.Sprintf("Opened %s %s in browser", msg.Stream.Name(), what)
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.logger.Warn("ui error", "context", msg.Context, "error", msg.Err)
		m.Authorizing = false
		m.Loading = false
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		if errors.Is(msg.Err, domain.ErrAuthRequired) {
			m.State = StateAuthRequired
		}
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handlePollResult(res service.PollResult) (tea.Model, tea.Cmd) {
	m.Loading = false
	next := WaitForPollCmd(m.PollerSvc.Results())

	switch {
	case res.OK():
		m.LastPoll = res.At
		if m.State == StateAuthRequired {
			m.State = StateBrowsing
		}
		m.syncView()
		return m, next

	case res.AuthRequired():
		m.State = StateAuthRequired
		m.StatusMsg = "Twitch session expired"
		m.StatusIsErr = true
		return m, next

	default:
		// The poller retries on its own; keep showing the last snapshot
		m.StatusMsg = ErrMsg{Err: res.Err, Context: "refreshing streams"}.Error()
		m.StatusIsErr = true
		return m, tea.Batch(next, ClearStatusCmd(5*time.Second))
	}
}

func (m *Model) handleChatEvent(ev service.ChatEvent) {
	// Stragglers from a connection that was already replaced
	if ev.Channel != m.ChatPanel.Channel() {
		return
	}

	switch {
	case ev.Err != nil:
		m.ChatPanel.SetStatus("chat unavailable")
		m.StatusMsg = ErrMsg{Err: ev.Err, Context: "joining chat"}.Error()
		m.StatusIsErr = true
	case ev.Closed:
		m.ChatPanel.SetStatus("disconnected")
	default:
		m.ChatPanel.Append(ev.Message)
	}
}

// syncView pulls the committed session state into the components and points
// the chat connection at the chat target
func (m *Model) syncView() {
	m.view = m.SessionSvc.View()

	m.Directory.SetStreams(m.view.Directory.Streams, m.view.Selection)
	m.Grid.SetStreams(m.view.Selected, m.view.Selection.ChatTarget)

	channel := ""
	if m.view.ChatTarget != nil {
		channel = m.view.ChatTarget.Channel()
	}
	m.ChatPanel.SetChannel(channel)
	if m.ChatSvc.Sync(m.ctx, m.view.ChatTarget) {
		m.logger.Debug("chat target changed", "channel", channel)
	}

	m.updateLayout()
}

// focusedStream returns the stream the next action applies to
func (m Model) focusedStream() (domain.StreamInfo, bool) {
	switch m.Focus {
	case PaneGrid:
		return m.Grid.Focused()
	case PaneChat:
		if m.view.ChatTarget != nil {
			return *m.view.ChatTarget, true
		}
		return domain.StreamInfo{}, false
	default:
		return m.Directory.Focused()
	}
}
