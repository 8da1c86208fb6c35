package service

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/twitchpanel/internal/domain"
)

// SessionView is a consistent, read-only copy of the session taken under one lock
type SessionView struct {
	Directory   domain.DirectorySnapshot
	Selection   domain.SelectionState
	Selected    []domain.StreamInfo // selection order, resolved against Directory
	ChatTarget  *domain.StreamInfo  // nil when no chat is open
	Initialized bool
	Collapsed   bool
}

// IsSelected reports whether the streamer is in the grid
func (v SessionView) IsSelected(streamerID string) bool {
	return v.Selection.IsSelected(streamerID)
}

// IsChatTarget reports whether the streamer's chat is open
func (v SessionView) IsChatTarget(streamerID string) bool {
	return v.Selection.ChatTarget != "" && v.Selection.ChatTarget == streamerID
}

// SessionService owns the directory snapshot and the user's selection. Every
// mutation goes through one of its methods so the two never disagree: selected
// ids and the chat target always reference streams in the latest snapshot.
type SessionService struct {
	store  domain.PreferenceStore
	device domain.DeviceClass
	logger *slog.Logger

	mu          sync.RWMutex
	directory   domain.DirectorySnapshot
	selection   domain.SelectionState
	initialized bool
	collapsed   bool
}

// NewSessionService creates an uninitialized session. store may be nil, in
// which case nothing is restored or persisted.
func NewSessionService(store domain.PreferenceStore, device domain.DeviceClass, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionService{
		store:  store,
		device: device,
		logger: logger,
	}
	if store != nil {
		if collapsed, ok := store.GetCollapsed(); ok {
			s.collapsed = collapsed
		}
	}
	return s
}

// ApplySnapshot merges a freshly polled directory into the session. An
// uninitialized session always takes the first-snapshot path.
func (s *SessionService) ApplySnapshot(snapshot domain.DirectorySnapshot, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if first || !s.initialized {
		s.applyFirstLocked(snapshot)
	} else {
		s.applySubsequentLocked(snapshot)
	}
}

// OnFirstSnapshot initializes the session from the first successful poll,
// restoring persisted selections that are still live.
func (s *SessionService) OnFirstSnapshot(snapshot domain.DirectorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFirstLocked(snapshot)
}

// OnSubsequentSnapshot drops selections and chat for streams that went offline.
// It never adds streams or moves the chat to a different live stream.
func (s *SessionService) OnSubsequentSnapshot(snapshot domain.DirectorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySubsequentLocked(snapshot)
}

func (s *SessionService) applyFirstLocked(snapshot domain.DirectorySnapshot) {
	s.directory = snapshot
	live := snapshot.Index()

	var selected []string
	if s.store != nil {
		if persisted, ok := s.store.GetSelectedStreams(); ok {
			seen := make(map[string]bool, len(persisted))
			for _, p := range persisted {
				if _, isLive := live[p.StreamerID]; isLive && !seen[p.StreamerID] {
					seen[p.StreamerID] = true
					selected = append(selected, p.StreamerID)
				}
			}
		}
	}
	if len(selected) == 0 {
		selected = []string{}
		if len(snapshot.Streams) > 0 {
			selected = append(selected, snapshot.Streams[0].StreamerID)
		}
	}

	chat := ""
	restored := false
	if s.store != nil {
		if persisted, ok := s.store.GetChatTarget(); ok && persisted != nil {
			if _, isLive := live[persisted.StreamerID]; isLive {
				chat = persisted.StreamerID
				restored = true
			}
		}
	}
	if !restored && s.device.AutoOpensChat() && len(selected) > 0 {
		chat = selected[0]
	}

	s.selection = domain.SelectionState{Selected: selected, ChatTarget: chat}
	s.initialized = true

	s.logger.Info("session initialized",
		"live", snapshot.Len(),
		"selected", len(selected),
		"chat", chat != "")

	s.persistLocked()
}

func (s *SessionService) applySubsequentLocked(snapshot domain.DirectorySnapshot) {
	s.directory = snapshot
	live := snapshot.Index()

	kept := make([]string, 0, len(s.selection.Selected))
	for _, id := range s.selection.Selected {
		if _, ok := live[id]; ok {
			kept = append(kept, id)
		} else {
			s.logger.Debug("dropping offline selection", "streamerID", id)
		}
	}

	chat := s.selection.ChatTarget
	if chat != "" {
		if _, ok := live[chat]; !ok {
			s.logger.Debug("closing chat for offline stream", "streamerID", chat)
			chat = ""
		}
	}

	s.selection = domain.SelectionState{Selected: kept, ChatTarget: chat}
	s.persistLocked()
}

// ToggleSelect removes the stream from the grid if present (closing its chat),
// otherwise appends it so the newest selection takes the last tile. Returns
// false if the stream is not live.
func (s *SessionService) ToggleSelect(streamerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.directory.Contains(streamerID) {
		return false
	}

	if s.selection.IsSelected(streamerID) {
		s.selection = s.selection.Without(streamerID)
		if s.selection.ChatTarget == streamerID {
			s.selection.ChatTarget = ""
		}
	} else {
		s.selection = s.selection.Clone()
		s.selection.Selected = append(s.selection.Selected, streamerID)
	}

	s.persistLocked()
	return true
}

// ToggleChat closes the stream's chat if it is open, otherwise makes it the
// only open chat. Grid membership is unaffected. Returns false if the stream is not live.
func (s *SessionService) ToggleChat(streamerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.directory.Contains(streamerID) {
		return false
	}

	if s.selection.ChatTarget == streamerID {
		s.selection.ChatTarget = ""
	} else {
		s.selection.ChatTarget = streamerID
	}

	s.persistLocked()
	return true
}

// ToggleCollapsed flips and persists the sidebar's collapsed flag
func (s *SessionService) ToggleCollapsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collapsed = !s.collapsed
	if s.store != nil {
		if err := s.store.SaveCollapsed(s.collapsed); err != nil {
			s.logger.Warn("failed to persist collapsed state", "error", err)
		}
	}
	return s.collapsed
}

// View returns a consistent copy of the session
func (s *SessionService) View() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := SessionView{
		Directory:   s.directory,
		Selection:   s.selection.Clone(),
		Selected:    s.selectedStreamsLocked(),
		Initialized: s.initialized,
		Collapsed:   s.collapsed,
	}
	if target, ok := s.chatTargetLocked(); ok {
		v.ChatTarget = &target
	}
	return v
}

// Selection returns a copy of the current selection state
func (s *SessionService) Selection() domain.SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Clone()
}

// Initialized reports whether the first successful poll has been applied
func (s *SessionService) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Reset returns the session to its uninitialized state and clears stored
// preferences. Used on logout.
func (s *SessionService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.directory = domain.DirectorySnapshot{}
	s.selection = domain.SelectionState{}
	s.initialized = false
	s.collapsed = false

	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

func (s *SessionService) selectedStreamsLocked() []domain.StreamInfo {
	idx := s.directory.Index()
	out := make([]domain.StreamInfo, 0, len(s.selection.Selected))
	for _, id := range s.selection.Selected {
		if info, ok := idx[id]; ok {
			out = append(out, info)
		}
	}
	return out
}

func (s *SessionService) chatTargetLocked() (domain.StreamInfo, bool) {
	if s.selection.ChatTarget == "" {
		return domain.StreamInfo{}, false
	}
	return s.directory.Find(s.selection.ChatTarget)
}

// persistLocked writes the selection and chat target. Failures are logged;
// the in-memory session stays authoritative.
func (s *SessionService) persistLocked() {
	if s.store == nil {
		return
	}

	if err := s.store.SaveSelectedStreams(s.selectedStreamsLocked()); err != nil {
		s.logger.Warn("failed to persist selected streams", "error", err)
	}

	var target *domain.StreamInfo
	if info, ok := s.chatTargetLocked(); ok {
		target = &info
	}
	if err := s.store.SaveChatTarget(target); err != nil {
		s.logger.Warn("failed to persist chat target", "error", err)
	}
}
