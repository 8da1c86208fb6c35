package twitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/mmcdole/twitchpanel/internal/domain"
)

// DefaultChatURL is Twitch's IRC-over-WebSocket endpoint
const DefaultChatURL = "wss://irc-ws.chat.twitch.tv:443"

const chatBuffer = 128

// ChatClient reads channel chat anonymously. Anonymous "justinfan" logins
// can read any public channel but cannot send.
type ChatClient struct {
	url    string
	logger *slog.Logger
}

// NewChatClient creates a chat client for the given endpoint
func NewChatClient(url string, logger *slog.Logger) *ChatClient {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		url = DefaultChatURL
	}
	return &ChatClient{url: url, logger: logger}
}

// Join connects to channel's chat. Messages arrive on the returned channel
// until ctx is cancelled or the server drops the connection, after which the
// channel is closed.
func (c *ChatClient) Join(ctx context.Context, channel string) (<-chan domain.ChatMessage, error) {
	channel = strings.ToLower(strings.TrimPrefix(channel, "#"))
	if channel == "" {
		return nil, errors.New("chat: empty channel name")
	}

	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial chat: %w", err)
	}
	conn.SetReadLimit(1 << 20)

	nick := fmt.Sprintf("justinfan%d", 10000+rand.IntN(89999))
	handshake := []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS SCHMOOPIIE",
		"NICK " + nick,
		"JOIN #" + channel,
	}
	for _, line := range handshake {
		if err := writeLine(ctx, conn, line); err != nil {
			conn.Close(websocket.StatusInternalError, "handshake failed")
			return nil, fmt.Errorf("chat handshake: %w", err)
		}
	}

	c.logger.Info("joined chat", "channel", channel, "nick", nick)

	out := make(chan domain.ChatMessage, chatBuffer)
	go c.readLoop(ctx, conn, channel, out)
	return out, nil
}

func (c *ChatClient) readLoop(ctx context.Context, conn *websocket.Conn, channel string, out chan<- domain.ChatMessage) {
	defer close(out)
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			c.logger.Warn("chat read error", "channel", channel, "error", err)
			return
		}

		for _, line := range strings.Split(string(data), "\r\n") {
			if line == "" {
				continue
			}
			msg := parseIRC(line)

			switch msg.Command {
			case "PING":
				if err := writeLine(ctx, conn, "PONG :"+msg.Trailing()); err != nil {
					c.logger.Warn("chat pong failed", "error", err)
					return
				}
			case "RECONNECT":
				c.logger.Info("chat server requested reconnect", "channel", channel)
				return
			case "PRIVMSG", "USERNOTICE", "NOTICE":
				chat, ok := toChatMessage(msg)
				if !ok {
					continue
				}
				select {
				case out <- chat:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func writeLine(ctx context.Context, conn *websocket.Conn, line string) error {
	return conn.Write(ctx, websocket.MessageText, []byte(line+"\r\n"))
}

// ircMessage is one parsed IRC line with IRCv3 tags
type ircMessage struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

// Trailing returns the last parameter, which carries the message text
func (m ircMessage) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// Nick returns the nickname part of the prefix (nick!user@host)
func (m ircMessage) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

func parseIRC(line string) ircMessage {
	var msg ircMessage
	line = strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(line, "@") {
		var raw string
		raw, line, _ = strings.Cut(line[1:], " ")
		msg.Tags = parseTags(raw)
	}
	if strings.HasPrefix(line, ":") {
		msg.Prefix, line, _ = strings.Cut(line[1:], " ")
	}

	var trailing string
	hasTrailing := false
	if i := strings.Index(line, " :"); i >= 0 {
		trailing = line[i+2:]
		line = line[:i]
		hasTrailing = true
	}

	fields := strings.Fields(line)
	if len(fields) > 0 {
		msg.Command = strings.ToUpper(fields[0])
		msg.Params = fields[1:]
	}
	if hasTrailing {
		msg.Params = append(msg.Params, trailing)
	}
	return msg
}

func parseTags(raw string) map[string]string {
	tags := make(map[string]string)
	for _, kv := range strings.Split(raw, ";") {
		k, v, _ := strings.Cut(kv, "=")
		tags[k] = unescapeTag(v)
	}
	return tags
}

var tagUnescaper = strings.NewReplacer(`\:`, ";", `\s`, " ", `\\`, `\`, `\r`, "\r", `\n`, "\n")

func unescapeTag(v string) string {
	return tagUnescaper.Replace(v)
}

func toChatMessage(m ircMessage) (domain.ChatMessage, bool) {
	if len(m.Params) == 0 {
		return domain.ChatMessage{}, false
	}

	msg := domain.ChatMessage{
		Channel: strings.TrimPrefix(m.Params[0], "#"),
		Color:   m.Tags["color"],
		Time:    time.Now(),
	}
	if ts := m.Tags["tmi-sent-ts"]; ts != "" {
		var ms int64
		if _, err := fmt.Sscan(ts, &ms); err == nil {
			msg.Time = time.UnixMilli(ms)
		}
	}

	switch m.Command {
	case "PRIVMSG":
		msg.User = m.Tags["display-name"]
		if msg.User == "" {
			msg.User = m.Nick()
		}
		msg.Text = m.Trailing()
		// /me actions arrive wrapped in CTCP ACTION
		if strings.HasPrefix(msg.Text, "\x01ACTION ") {
			msg.Text = strings.TrimSuffix(strings.TrimPrefix(msg.Text, "\x01ACTION "), "\x01")
		}
	case "USERNOTICE":
		msg.System = true
		msg.Text = m.Tags["system-msg"]
		if len(m.Params) > 1 {
			msg.Text = strings.TrimSpace(msg.Text + " " + m.Trailing())
		}
	case "NOTICE":
		msg.System = true
		msg.Text = m.Trailing()
	}

	if msg.Text == "" {
		return domain.ChatMessage{}, false
	}
	return msg, true
}
