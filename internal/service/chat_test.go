package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/twitchpanel/internal/domain"
)

type fakeChat struct {
	mu      sync.Mutex
	joins   []string
	streams map[string]chan domain.ChatMessage
	ctxs    map[string]context.Context
	err     error
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		streams: make(map[string]chan domain.ChatMessage),
		ctxs:    make(map[string]context.Context),
	}
}

func (f *fakeChat) Join(ctx context.Context, channel string) (<-chan domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, channel)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan domain.ChatMessage, 8)
	f.streams[channel] = ch
	f.ctxs[channel] = ctx
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.streams[channel] == ch {
			close(ch)
			delete(f.streams, channel)
		}
	}()
	return ch, nil
}

func (f *fakeChat) stream(t *testing.T, channel string) chan domain.ChatMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		ch, ok := f.streams[channel]
		f.mu.Unlock()
		if ok {
			return ch
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no connection to %s", channel)
	return nil
}

func (f *fakeChat) ctx(channel string) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxs[channel]
}

func nextEvent(t *testing.T, s *ChatService) ChatEvent {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no chat event")
		return ChatEvent{}
	}
}

func TestChatSyncOpensAndForwards(t *testing.T) {
	surface := newFakeChat()
	s := NewChatService(surface, discardLogger())
	defer s.Close()

	target := stream("A")
	if !s.Sync(context.Background(), &target) {
		t.Fatal("Sync reported no change")
	}
	if s.Current() != "login_A" {
		t.Errorf("Current = %q", s.Current())
	}

	surface.stream(t, "login_A") <- domain.ChatMessage{User: "viewer", Text: "hi"}
	ev := nextEvent(t, s)
	if ev.Channel != "login_A" || ev.Message.Text != "hi" || ev.Closed {
		t.Errorf("event = %+v", ev)
	}

	if s.Sync(context.Background(), &target) {
		t.Error("Sync to the same channel reported a change")
	}
}

func TestChatSyncReplacesConnection(t *testing.T) {
	surface := newFakeChat()
	s := NewChatService(surface, discardLogger())
	defer s.Close()

	a, b := stream("A"), stream("B")
	s.Sync(context.Background(), &a)
	surface.stream(t, "login_A")
	s.Sync(context.Background(), &b)
	surface.stream(t, "login_B")

	select {
	case <-surface.ctx("login_A").Done():
	case <-time.After(2 * time.Second):
		t.Fatal("previous connection not cancelled")
	}
	if s.Current() != "login_B" {
		t.Errorf("Current = %q", s.Current())
	}

	surface.stream(t, "login_B") <- domain.ChatMessage{Text: "from b"}
	ev := nextEvent(t, s)
	if ev.Channel != "login_B" {
		t.Errorf("event from %q after switching to b", ev.Channel)
	}
}

func TestChatSyncNilCloses(t *testing.T) {
	surface := newFakeChat()
	s := NewChatService(surface, discardLogger())

	a := stream("A")
	s.Sync(context.Background(), &a)
	surface.stream(t, "login_A")

	if !s.Sync(context.Background(), nil) {
		t.Error("closing reported no change")
	}
	if s.Current() != "" {
		t.Errorf("Current = %q after close", s.Current())
	}
	select {
	case <-surface.ctx("login_A").Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connection not cancelled")
	}
	if s.Sync(context.Background(), nil) {
		t.Error("closing twice reported a change")
	}
}

func TestChatServerHangupEmitsClosed(t *testing.T) {
	surface := newFakeChat()
	s := NewChatService(surface, discardLogger())
	defer s.Close()

	a := stream("A")
	s.Sync(context.Background(), &a)
	ch := surface.stream(t, "login_A")

	surface.mu.Lock()
	close(ch)
	delete(surface.streams, "login_A")
	surface.mu.Unlock()

	ev := nextEvent(t, s)
	if !ev.Closed || ev.Channel != "login_A" {
		t.Errorf("event = %+v, want closed", ev)
	}

	// a later Sync to the same target reconnects
	deadline := time.Now().Add(2 * time.Second)
	for s.Current() != "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.Sync(context.Background(), &a) {
		t.Error("Sync after hangup did not reconnect")
	}
}

func TestChatJoinFailure(t *testing.T) {
	surface := newFakeChat()
	surface.err = errors.New("dial refused")
	s := NewChatService(surface, discardLogger())

	a := stream("A")
	s.Sync(context.Background(), &a)

	ev := nextEvent(t, s)
	if ev.Err == nil || !ev.Closed {
		t.Errorf("event = %+v, want join error", ev)
	}
}
