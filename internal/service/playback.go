package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
	"github.com/mmcdole/twitchpanel/internal/twitch"
)

// videoSurface opens streams outside the terminal (consumer-defined interface)
type videoSurface interface {
	Launch(url string) error
	LaunchAt(url string, bounds layout.Rect) error
	OpenURL(url string) error
}

// PlaybackConfig describes the physical screen used for tiled playback
type PlaybackConfig struct {
	ScreenWidth  int
	ScreenHeight int
	AspectRatio  float64
	EmbedParent  string
	Muted        bool
}

// PlaybackService launches streams in an external player or the browser
type PlaybackService struct {
	surface videoSurface
	cfg     PlaybackConfig
	logger  *slog.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(surface videoSurface, cfg PlaybackConfig, logger *slog.Logger) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AspectRatio <= 0 || math.IsNaN(cfg.AspectRatio) {
		cfg.AspectRatio = 16.0 / 9.0
	}
	if cfg.EmbedParent == "" {
		cfg.EmbedParent = "localhost"
	}
	return &PlaybackService{
		surface: surface,
		cfg:     cfg,
		logger:  logger,
	}
}

// Play opens a single stream in the player
func (s *PlaybackService) Play(stream domain.StreamInfo) error {
	url := twitch.ChannelURL(stream.Channel())
	s.logger.Info("launching playback", "channel", stream.Channel())
	if err := s.surface.Launch(url); err != nil {
		return fmt.Errorf("play %s: %w", stream.Channel(), err)
	}
	return nil
}

// TileBounds lays out count players over the configured screen, centered
func (s *PlaybackService) TileBounds(count int) []layout.Rect {
	w, h := float64(s.cfg.ScreenWidth), float64(s.cfg.ScreenHeight)
	grid := layout.Compute(count, s.cfg.AspectRatio, w, h)
	dx, dy := grid.Offset(w, h)

	rects := grid.Cells()
	for i := range rects {
		rects[i].X += int(dx)
		rects[i].Y += int(dy)
	}
	return rects
}

// PlayTiled opens every stream in its own player window, arranged with the
// same grid the terminal uses. Streams that fail to launch are reported
// together; the rest still open.
func (s *PlaybackService) PlayTiled(streams []domain.StreamInfo) error {
	if len(streams) == 0 {
		return errors.New("no streams selected")
	}
	if s.cfg.ScreenWidth <= 0 || s.cfg.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", s.cfg.ScreenWidth, s.cfg.ScreenHeight)
	}

	bounds := s.TileBounds(len(streams))
	var errs []error
	for i, stream := range streams {
		url := twitch.ChannelURL(stream.Channel())
		s.logger.Info("launching tiled playback", "channel", stream.Channel(), "bounds", bounds[i])
		if err := s.surface.LaunchAt(url, bounds[i]); err != nil {
			errs = append(errs, fmt.Errorf("play %s: %w", stream.Channel(), err))
		}
	}
	return errors.Join(errs...)
}

// OpenVideoEmbed opens the stream's embedded player in the browser
func (s *PlaybackService) OpenVideoEmbed(stream domain.StreamInfo) error {
	return s.surface.OpenURL(twitch.StreamVideoEmbedURL(stream.Channel(), s.cfg.EmbedParent, s.cfg.Muted))
}

// OpenChatEmbed opens the stream's embedded chat in the browser
func (s *PlaybackService) OpenChatEmbed(stream domain.StreamInfo) error {
	return s.surface.OpenURL(twitch.StreamChatEmbedURL(stream.Channel(), s.cfg.EmbedParent, true))
}
