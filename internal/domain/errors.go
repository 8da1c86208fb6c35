package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrAuthRequired indicates there is no valid Twitch credential
	ErrAuthRequired = errors.New("twitch authentication required")

	// ErrDirectoryUnavailable indicates the Twitch API is unreachable
	ErrDirectoryUnavailable = errors.New("twitch API is unreachable")

	// ErrStreamNotLive indicates the referenced stream is not in the latest snapshot
	ErrStreamNotLive = errors.New("stream is not live")

	// ErrNoPlayer indicates no external video player could be launched
	ErrNoPlayer = errors.New("no video player available")
)

// FetchError wraps any failure of a directory poll. The poller treats every
// FetchError the same way regardless of the underlying cause.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	if e.Op == "" {
		return "fetch followed streams: " + e.Err.Error()
	}
	return "fetch followed streams: " + e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err means the user must authenticate again
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}
