package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
	"github.com/mmcdole/twitchpanel/internal/service"
	"github.com/mmcdole/twitchpanel/internal/twitch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopFetcher struct{}

func (nopFetcher) FetchFollowedStreams(ctx context.Context) (domain.DirectorySnapshot, error) {
	return domain.DirectorySnapshot{}, nil
}

// fakeChat keeps every joined channel open until its context ends
type fakeChat struct {
	mu     sync.Mutex
	joined []string
}

func (f *fakeChat) Join(ctx context.Context, channel string) (<-chan domain.ChatMessage, error) {
	f.mu.Lock()
	f.joined = append(f.joined, channel)
	f.mu.Unlock()

	ch := make(chan domain.ChatMessage)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

type fakeVideo struct {
	launches []layout.Rect
	urls     []string
	opened   []string
}

func (f *fakeVideo) Launch(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeVideo) LaunchAt(url string, bounds layout.Rect) error {
	f.urls = append(f.urls, url)
	f.launches = append(f.launches, bounds)
	return nil
}

func (f *fakeVideo) OpenURL(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

type fakeAuth struct{ token twitch.Token }

func (f *fakeAuth) Authenticate(ctx context.Context, renew bool) (twitch.Token, error) {
	return f.token, nil
}

func (f *fakeAuth) Clear() {}

type nopSink struct{}

func (nopSink) SetAccessToken(string) {}

type nopTokens struct{}

func (nopTokens) SaveToken(string) error { return nil }
func (nopTokens) ClearToken() error      { return nil }

type harness struct {
	model   Model
	session *service.SessionService
	chat    *service.ChatService
	video   *fakeVideo
}

func stream(id string) domain.StreamInfo {
	return domain.StreamInfo{
		StreamerID:  id,
		Login:       "login_" + id,
		DisplayName: "Name" + id,
		GameName:    "Game" + id,
		ViewerCount: 1200,
	}
}

func snapshot(ids ...string) domain.DirectorySnapshot {
	streams := make([]domain.StreamInfo, len(ids))
	for i, id := range ids {
		streams[i] = stream(id)
	}
	return domain.NewDirectorySnapshot(streams, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := discardLogger()
	session := service.NewSessionService(nil, domain.DeviceDesktop, logger)
	poller := service.NewPoller(nopFetcher{}, session, time.Hour, logger)
	chat := service.NewChatService(&fakeChat{}, logger)
	t.Cleanup(chat.Close)
	video := &fakeVideo{}
	playback := service.NewPlaybackService(video, service.PlaybackConfig{ScreenWidth: 1920, ScreenHeight: 1080}, logger)
	auth := service.NewAuthService(&fakeAuth{token: twitch.Token{Login: "viewer"}}, nopSink{}, nopTokens{}, session, logger)

	m := NewModel(ctx, Services{
		Session:  session,
		Poller:   poller,
		Chat:     chat,
		Playback: playback,
		Auth:     auth,
		Logger:   logger,
	}, Config{AspectRatio: 16.0 / 9.0, CellAspect: 2, SidebarWidth: 36, ChatWidth: 44})

	h := &harness{model: m, session: session, chat: chat, video: video}
	h.send(tea.WindowSizeMsg{Width: 160, Height: 40})
	return h
}

// send feeds msg through Update and returns the resulting command
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// poll applies the snapshot the way the poller does, then delivers the result
func (h *harness) poll(snap domain.DirectorySnapshot, first bool) {
	h.session.ApplySnapshot(snap, first)
	h.send(PollResultMsg{Result: service.PollResult{Snapshot: snap, First: first, At: snap.FetchedAt}})
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyMsg(k))
	}
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestPollResultPopulatesPanels(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B", "C"), true)

	m := h.model
	if m.Loading {
		t.Error("still loading after first poll")
	}
	if m.Directory.Count() != 3 {
		t.Errorf("directory rows = %d, want 3", m.Directory.Count())
	}
	if s, ok := m.Grid.Focused(); !ok || s.StreamerID != "A" {
		t.Errorf("grid tile = %+v, %v; want first stream selected by default", s, ok)
	}
	if m.LastPoll.IsZero() {
		t.Error("LastPoll not recorded")
	}
}

func TestSelectKeyAppendsToGrid(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B", "C"), true)

	h.press("j", "space")
	got := h.session.Selection().Selected
	if fmt.Sprint(got) != "[A B]" {
		t.Errorf("selected = %v, want [A B]", got)
	}

	h.press("space")
	got = h.session.Selection().Selected
	if fmt.Sprint(got) != "[A]" {
		t.Errorf("after second toggle selected = %v, want [A]", got)
	}
}

func TestChatKeyOpensChat(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B"), true)

	h.press("c")
	if h.session.Selection().ChatTarget != "A" {
		t.Fatalf("chat target = %q, want A", h.session.Selection().ChatTarget)
	}
	if got := h.chat.Current(); got != "login_A" {
		t.Errorf("chat connection = %q, want login_A", got)
	}
	if got := h.model.ChatPanel.Channel(); got != "login_A" {
		t.Errorf("panel channel = %q", got)
	}
	if l := h.model.calculatePanelLayout(); l.chatWidth == 0 {
		t.Error("chat panel not laid out")
	}

	h.send(ChatEventMsg{Event: service.ChatEvent{
		Channel: "login_A",
		Message: domain.ChatMessage{Channel: "login_a", User: "bob", Text: "hi"},
	}})
	h.send(ChatEventMsg{Event: service.ChatEvent{
		Channel: "login_B",
		Message: domain.ChatMessage{Channel: "login_b", User: "eve", Text: "stale"},
	}})
	if n := h.model.ChatPanel.Len(); n != 1 {
		t.Errorf("chat messages = %d, want 1", n)
	}

	h.press("c")
	if h.chat.Current() != "" {
		t.Errorf("chat still open on %q", h.chat.Current())
	}
}

func TestOfflineChatTargetClosesPanel(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B"), true)
	h.press("c")

	h.poll(snapshot("B"), false)
	if h.model.ChatPanel.Channel() != "" {
		t.Errorf("panel still on %q", h.model.ChatPanel.Channel())
	}
	if h.chat.Current() != "" {
		t.Errorf("connection still on %q", h.chat.Current())
	}
	if len(h.model.view.Selected) != 0 {
		t.Errorf("selected = %v, want offline stream dropped", h.model.view.Selected)
	}
}

func TestCollapseMovesFocus(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A"), true)

	h.press("tab")
	if !h.model.view.Collapsed || h.model.Focus != PaneGrid {
		t.Errorf("collapsed = %v, focus = %v", h.model.view.Collapsed, h.model.Focus)
	}
	if l := h.model.calculatePanelLayout(); l.sidebarWidth != 0 {
		t.Errorf("sidebar width = %d while collapsed", l.sidebarWidth)
	}

	h.press("tab")
	if h.model.view.Collapsed || h.model.Focus != PaneDirectory {
		t.Errorf("collapsed = %v, focus = %v", h.model.view.Collapsed, h.model.Focus)
	}
}

func TestFilterTypingSwallowsKeys(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B"), true)

	h.press("/", "c")
	if !h.model.Directory.IsFilterTyping() {
		t.Fatal("filter input not focused")
	}
	if h.session.Selection().ChatTarget != "" {
		t.Error("typing in the filter toggled chat")
	}

	h.press("esc")
	if h.model.Directory.IsFiltering() {
		t.Error("esc did not clear the filter")
	}
}

func TestFailedPollKeepsSnapshot(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B"), true)

	h.send(PollResultMsg{Result: service.PollResult{Err: fmt.Errorf("fetch: %w", domain.ErrDirectoryUnavailable)}})
	if !h.model.StatusIsErr {
		t.Error("failure not reported")
	}
	if h.model.State != StateBrowsing {
		t.Errorf("state = %v", h.model.State)
	}
	if h.model.Directory.Count() != 2 {
		t.Errorf("directory rows = %d, want last snapshot kept", h.model.Directory.Count())
	}
}

func TestAuthRequiredThenReauth(t *testing.T) {
	h := newHarness(t)
	h.send(PollResultMsg{Result: service.PollResult{Err: fmt.Errorf("fetch: %w", domain.ErrAuthRequired)}})
	if h.model.State != StateAuthRequired {
		t.Fatalf("state = %v, want auth required", h.model.State)
	}
	if !strings.Contains(h.model.View(), "session expired") {
		t.Error("auth modal not shown")
	}

	cmd := h.press("L")
	if cmd == nil || !h.model.Authorizing {
		t.Fatal("L did not start authorization")
	}
	msg := cmd()
	done, ok := msg.(AuthCompleteMsg)
	if !ok {
		t.Fatalf("reauth produced %T", msg)
	}
	if done.Token.Login != "viewer" {
		t.Errorf("token = %+v", done.Token)
	}

	h.send(done)
	if h.model.State != StateBrowsing || h.model.Authorizing {
		t.Errorf("state = %v, authorizing = %v", h.model.State, h.model.Authorizing)
	}
}

func TestPlayAllLaunchesTiled(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B", "C"), true)
	h.press("j", "space")

	cmd := h.press("P")
	if cmd == nil {
		t.Fatal("no playback command")
	}
	if _, ok := cmd().(PlaybackStartedMsg); !ok {
		t.Fatal("playback did not start")
	}
	want := []layout.Rect{
		{X: 480, Y: 0, Width: 960, Height: 540},
		{X: 480, Y: 540, Width: 960, Height: 540},
	}
	if fmt.Sprint(h.video.launches) != fmt.Sprint(want) {
		t.Errorf("launches = %v, want %v", h.video.launches, want)
	}
}

func TestPlayAllWithEmptyGrid(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A"), true)
	h.press("space")

	cmd := h.press("P")
	msg, ok := cmd().(StatusMsg)
	if !ok || !msg.IsError {
		t.Errorf("got %#v, want error status", msg)
	}
	if len(h.video.urls) != 0 {
		t.Errorf("launched %v", h.video.urls)
	}
}

func TestViewRendersPanels(t *testing.T) {
	h := newHarness(t)
	h.poll(snapshot("A", "B"), true)

	out := h.model.View()
	for _, want := range []string{"Following · 2 live", "NameA", "? help"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	h.press("?")
	if !strings.Contains(h.model.View(), "This help") {
		t.Error("help not shown")
	}
	h.press("x")
	if h.model.State != StateBrowsing {
		t.Error("help did not close")
	}
}

func TestCalculatePanelLayout(t *testing.T) {
	chat := stream("A")
	tests := []struct {
		name      string
		width     int
		collapsed bool
		chat      bool
		want      panelLayout
	}{
		{"sidebar and grid", 160, false, false, panelLayout{sidebarWidth: 36, gridWidth: 124, height: 39}},
		{"with chat", 160, false, true, panelLayout{sidebarWidth: 36, gridWidth: 80, chatWidth: 44, height: 39}},
		{"collapsed", 160, true, true, panelLayout{gridWidth: 116, chatWidth: 44, height: 39}},
		{"narrow drops chat", 50, false, true, panelLayout{sidebarWidth: 25, gridWidth: 25, height: 39}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Model{
				Width:  tt.width,
				Height: 40,
				Config: Config{SidebarWidth: 36, ChatWidth: 44},
			}
			m.view.Collapsed = tt.collapsed
			if tt.chat {
				m.view.ChatTarget = &chat
			}
			if got := m.calculatePanelLayout(); got != tt.want {
				t.Errorf("layout = %+v, want %+v", got, tt.want)
			}
		})
	}
}
