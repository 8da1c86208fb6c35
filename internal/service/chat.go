package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/twitchpanel/internal/domain"
)

// chatSurface joins a channel's chat (consumer-defined interface)
type chatSurface interface {
	Join(ctx context.Context, channel string) (<-chan domain.ChatMessage, error)
}

// ChatEvent is delivered for every message of the open chat and when the
// connection ends. Channel identifies the connection it came from.
type ChatEvent struct {
	Channel string
	Message domain.ChatMessage
	Err     error // join failure
	Closed  bool  // connection ended; no further events for Channel
}

// ChatService keeps at most one chat connection open, following the
// session's chat target.
type ChatService struct {
	surface chatSurface
	logger  *slog.Logger
	events  chan ChatEvent

	mu      sync.Mutex
	channel string
	cancel  context.CancelFunc
	gen     uint64
}

// NewChatService creates a chat service. Events must be drained by the caller.
func NewChatService(surface chatSurface, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		surface: surface,
		logger:  logger,
		events:  make(chan ChatEvent, 256),
	}
}

// Events returns the event stream
func (s *ChatService) Events() <-chan ChatEvent {
	return s.events
}

// Current returns the channel whose chat is open, or ""
func (s *ChatService) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// Sync points the chat at target. A nil target closes the open chat; the
// same channel as before is a no-op. Returns true when the connection changed.
func (s *ChatService) Sync(ctx context.Context, target *domain.StreamInfo) bool {
	channel := ""
	if target != nil {
		channel = target.Channel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if channel == s.channel {
		return false
	}
	s.closeLocked()
	if channel == "" {
		return true
	}

	connCtx, cancel := context.WithCancel(ctx)
	s.channel = channel
	s.cancel = cancel
	s.gen++
	go s.pump(connCtx, channel, s.gen)
	return true
}

// Close drops the open chat, if any
func (s *ChatService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *ChatService) closeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.logger.Debug("closed chat", "channel", s.channel)
	}
	s.channel = ""
	s.cancel = nil
}

func (s *ChatService) pump(ctx context.Context, channel string, gen uint64) {
	messages, err := s.surface.Join(ctx, channel)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("failed to join chat", "channel", channel, "error", err)
			s.emit(ctx, ChatEvent{Channel: channel, Err: err, Closed: true})
		}
		s.forget(gen)
		return
	}

	for msg := range messages {
		s.emit(ctx, ChatEvent{Channel: channel, Message: msg})
	}

	if ctx.Err() == nil {
		s.emit(ctx, ChatEvent{Channel: channel, Closed: true})
	}
	s.forget(gen)
}

// emit drops the event when the consumer has fallen behind or the
// connection was replaced
func (s *ChatService) emit(ctx context.Context, ev ChatEvent) {
	if ctx.Err() != nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("chat event dropped", "channel", ev.Channel)
	}
}

// forget clears the connection state if gen is still the current connection,
// so the next Sync to the same channel reconnects.
func (s *ChatService) forget(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.channel = ""
		s.cancel = nil
	}
}
