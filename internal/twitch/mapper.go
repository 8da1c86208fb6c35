package twitch

import (
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/nicklaw5/helix/v2"
)

// MapStreams converts Helix streams to domain streams, keeping API order.
// avatars maps broadcaster id to profile image URL and may be nil.
func MapStreams(streams []helix.Stream, avatars map[string]string) []domain.StreamInfo {
	out := make([]domain.StreamInfo, 0, len(streams))
	seen := make(map[string]bool, len(streams))
	for _, s := range streams {
		// Pages can overlap when the live set shifts mid-pagination
		if seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		out = append(out, mapStream(s, avatars[s.UserID]))
	}
	return out
}

func mapStream(s helix.Stream, avatar string) domain.StreamInfo {
	viewers := s.ViewerCount
	if viewers < 0 {
		viewers = 0
	}
	return domain.StreamInfo{
		StreamerID:  s.UserID,
		Login:       s.UserLogin,
		DisplayName: s.UserName,
		GameName:    s.GameName,
		Title:       s.Title,
		ViewerCount: viewers,
		AvatarURL:   avatar,
		StartedAt:   s.StartedAt,
	}
}
