package domain

import (
	"strconv"
	"time"
)

// StreamInfo is one live followed channel as reported by a single poll.
// Values are never mutated; the next poll supersedes them by StreamerID.
type StreamInfo struct {
	StreamerID  string    `json:"streamer_id"`  // Stable identity key (Twitch user id)
	Login       string    `json:"login"`        // Channel name used in URLs and chat
	DisplayName string    `json:"display_name"` // Capitalized name shown in the UI
	GameName    string    `json:"game_name"`
	Title       string    `json:"title"`
	ViewerCount int       `json:"viewer_count"`
	AvatarURL   string    `json:"avatar_url"`
	StartedAt   time.Time `json:"started_at"`
}

// Name returns the best display name for the stream
func (s StreamInfo) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Login
}

// Channel returns the channel name used for embeds, chat and playback
func (s StreamInfo) Channel() string {
	if s.Login != "" {
		return s.Login
	}
	return s.DisplayName
}

// FormattedViewers returns the viewer count with digit grouping ("12,345")
func (s StreamInfo) FormattedViewers() string {
	return GroupDigits(s.ViewerCount)
}

// Uptime returns how long the stream has been live at the given instant
func (s StreamInfo) Uptime(now time.Time) time.Duration {
	if s.StartedAt.IsZero() || now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// GroupDigits formats n with comma thousands separators
func GroupDigits(n int) string {
	if n < 0 {
		return "-" + GroupDigits(-n)
	}
	raw := strconv.Itoa(n)
	if len(raw) <= 3 {
		return raw
	}

	lead := len(raw) % 3
	if lead == 0 {
		lead = 3
	}
	out := make([]byte, 0, len(raw)+len(raw)/3)
	out = append(out, raw[:lead]...)
	for i := lead; i < len(raw); i += 3 {
		out = append(out, ',')
		out = append(out, raw[i:i+3]...)
	}
	return string(out)
}

// DirectorySnapshot is one fetch's worth of live followed channels.
// Order is whatever the API returned.
type DirectorySnapshot struct {
	Streams   []StreamInfo
	FetchedAt time.Time
}

// NewDirectorySnapshot copies streams into a new snapshot
func NewDirectorySnapshot(streams []StreamInfo, fetchedAt time.Time) DirectorySnapshot {
	cp := make([]StreamInfo, len(streams))
	copy(cp, streams)
	return DirectorySnapshot{Streams: cp, FetchedAt: fetchedAt}
}

// Len returns the number of live streams
func (d DirectorySnapshot) Len() int {
	return len(d.Streams)
}

// Find returns the stream with the given id
func (d DirectorySnapshot) Find(streamerID string) (StreamInfo, bool) {
	for _, s := range d.Streams {
		if s.StreamerID == streamerID {
			return s, true
		}
	}
	return StreamInfo{}, false
}

// Contains reports whether the streamer is live in this snapshot
func (d DirectorySnapshot) Contains(streamerID string) bool {
	_, ok := d.Find(streamerID)
	return ok
}

// Index returns an id -> stream lookup for the snapshot
func (d DirectorySnapshot) Index() map[string]StreamInfo {
	idx := make(map[string]StreamInfo, len(d.Streams))
	for _, s := range d.Streams {
		idx[s.StreamerID] = s
	}
	return idx
}

// SelectionState is the ordered set of streams shown in the grid plus the
// single stream whose chat is open. Selection order drives tile placement.
type SelectionState struct {
	Selected   []string // streamer ids, most recently selected last, no duplicates
	ChatTarget string   // empty when no chat is open
}

// Clone returns a deep copy
func (s SelectionState) Clone() SelectionState {
	sel := make([]string, len(s.Selected))
	copy(sel, s.Selected)
	return SelectionState{Selected: sel, ChatTarget: s.ChatTarget}
}

// IsSelected reports whether the streamer is in the selection
func (s SelectionState) IsSelected(streamerID string) bool {
	return s.indexOf(streamerID) >= 0
}

// HasChat reports whether any chat is open
func (s SelectionState) HasChat() bool {
	return s.ChatTarget != ""
}

func (s SelectionState) indexOf(streamerID string) int {
	for i, id := range s.Selected {
		if id == streamerID {
			return i
		}
	}
	return -1
}

// Without returns a copy of the selection with the streamer removed
func (s SelectionState) Without(streamerID string) SelectionState {
	out := SelectionState{ChatTarget: s.ChatTarget, Selected: make([]string, 0, len(s.Selected))}
	for _, id := range s.Selected {
		if id != streamerID {
			out.Selected = append(out.Selected, id)
		}
	}
	return out
}

// DeviceClass selects first-load defaults that depend on the viewing device
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
)

// AutoOpensChat reports whether the first load should open the default stream's chat
func (d DeviceClass) AutoOpensChat() bool {
	return d == DeviceMobile
}
