package domain

// PreferenceStore persists the last-known UI preferences between runs.
// Every getter reports found=false when no record was ever written, which is
// distinct from a stored empty list, false, or explicit "no chat".
type PreferenceStore interface {
	GetCollapsed() (collapsed bool, found bool)
	SaveCollapsed(collapsed bool) error

	GetSelectedStreams() (streams []StreamInfo, found bool)
	SaveSelectedStreams(streams []StreamInfo) error

	// GetChatTarget returns nil with found=true when "no chat" was stored
	GetChatTarget() (target *StreamInfo, found bool)
	SaveChatTarget(target *StreamInfo) error

	// Clear drops every record
	Clear() error

	Close() error
}
