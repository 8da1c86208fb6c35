package tui

import (
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/service"
	"github.com/mmcdole/twitchpanel/internal/twitch"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PollResultMsg carries one poll outcome from the poller
type PollResultMsg struct {
	Result service.PollResult
}

// ChatEventMsg carries one chat event from the chat service
type ChatEventMsg struct {
	Event service.ChatEvent
}

// AuthCompleteMsg signals that re-authentication finished
type AuthCompleteMsg struct {
	Token twitch.Token
}

// PlaybackStartedMsg signals that a player was launched for streams
type PlaybackStartedMsg struct {
	Streams []domain.StreamInfo
}

// EmbedOpenedMsg signals that an embed page was opened in the browser
type EmbedOpenedMsg struct {
	Stream domain.StreamInfo
	Chat   bool
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
