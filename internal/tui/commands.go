package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/service"
)

// Command factories for async operations

// WaitForPollCmd waits for the next poll result. The update loop re-issues
// it after every PollResultMsg.
func WaitForPollCmd(results <-chan service.PollResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return PollResultMsg{Result: res}
	}
}

// WaitForChatCmd waits for the next chat event
func WaitForChatCmd(events <-chan service.ChatEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ChatEventMsg{Event: ev}
	}
}

// ReauthCmd runs the browser authorization flow again and triggers a poll
// with the new token
func ReauthCmd(auth *service.AuthService, poller *service.Poller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		token, err := auth.Login(ctx, true)
		if err != nil {
			return ErrMsg{Err: err, Context: "authenticating"}
		}
		poller.Refresh()
		return AuthCompleteMsg{Token: token}
	}
}

// PlayCmd opens one stream in the external player
func PlayCmd(svc *service.PlaybackService, stream domain.StreamInfo) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Play(stream); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Streams: []domain.StreamInfo{stream}}
	}
}

// PlayTiledCmd opens every stream in its own player window laid out on screen
func PlayTiledCmd(svc *service.PlaybackService, streams []domain.StreamInfo) tea.Cmd {
	return func() tea.Msg {
		if err := svc.PlayTiled(streams); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Streams: streams}
	}
}

// OpenEmbedCmd opens the stream's video or chat embed in the browser
func OpenEmbedCmd(svc *service.PlaybackService, stream domain.StreamInfo, chat bool) tea.Cmd {
	return func() tea.Msg {
		open := svc.OpenVideoEmbed
		if chat {
			open = svc.OpenChatEmbed
		}
		if err := open(stream); err != nil {
			return ErrMsg{Err: err, Context: "opening embed"}
		}
		return EmbedOpenedMsg{Stream: stream, Chat: chat}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
