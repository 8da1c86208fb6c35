package twitch

import (
	"net/url"
	"strconv"
)

const (
	playerBaseURL  = "https://player.twitch.tv/"
	channelBaseURL = "https://www.twitch.tv/"
	embedBaseURL   = "https://twitch.tv/embed/"
)

// StreamVideoEmbedURL returns the embeddable player URL for a channel.
// parent must be the host serving the embedding page.
func StreamVideoEmbedURL(channel, parent string, muted bool) string {
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("parent", parent)
	q.Set("muted", strconv.FormatBool(muted))
	return playerBaseURL + "?" + q.Encode()
}

// StreamChatEmbedURL returns the embeddable chat URL for a channel
func StreamChatEmbedURL(channel, parent string, darkMode bool) string {
	q := url.Values{}
	q.Set("parent", parent)
	raw := q.Encode()
	if darkMode {
		// darkpopout is a bare flag with no value
		raw += "&darkpopout"
	}
	return embedBaseURL + url.PathEscape(channel) + "/chat?" + raw
}

// ChannelURL returns the channel page, which external players such as mpv
// (via yt-dlp) and streamlink accept directly.
func ChannelURL(channel string) string {
	return channelBaseURL + url.PathEscape(channel)
}
