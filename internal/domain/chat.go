package domain

import "time"

// ChatMessage is one line of a channel's chat
type ChatMessage struct {
	Channel string
	User    string // display name, falls back to the login
	Color   string // "#RRGGBB" when the user set one
	Text    string
	Time    time.Time
	System  bool // notices and connection events rather than user messages
}
