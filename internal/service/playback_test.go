package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
)

type launch struct {
	url    string
	bounds *layout.Rect
}

type fakeSurface struct {
	launches []launch
	opened   []string
	failURL  string
}

func (f *fakeSurface) Launch(url string) error {
	f.launches = append(f.launches, launch{url: url})
	return nil
}

func (f *fakeSurface) LaunchAt(url string, bounds layout.Rect) error {
	if url == f.failURL {
		return domain.ErrNoPlayer
	}
	f.launches = append(f.launches, launch{url: url, bounds: &bounds})
	return nil
}

func (f *fakeSurface) OpenURL(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func newPlayback(surface *fakeSurface, w, h int) *PlaybackService {
	return NewPlaybackService(surface, PlaybackConfig{
		ScreenWidth:  w,
		ScreenHeight: h,
		EmbedParent:  "example.com",
		Muted:        true,
	}, discardLogger())
}

func TestPlayLaunchesChannelURL(t *testing.T) {
	surface := &fakeSurface{}
	if err := newPlayback(surface, 1920, 1080).Play(stream("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(surface.launches) != 1 || surface.launches[0].url != "https://www.twitch.tv/login_A" {
		t.Errorf("launches = %+v", surface.launches)
	}
}

func TestPlayTiledUsesGrid(t *testing.T) {
	surface := &fakeSurface{}
	streams := snap("A", "B", "C").Streams
	if err := newPlayback(surface, 1920, 1080).PlayTiled(streams); err != nil {
		t.Fatalf("PlayTiled: %v", err)
	}

	want := []layout.Rect{
		{X: 0, Y: 0, Width: 960, Height: 540},
		{X: 960, Y: 0, Width: 960, Height: 540},
		{X: 0, Y: 540, Width: 960, Height: 540},
	}
	if len(surface.launches) != len(want) {
		t.Fatalf("launched %d players, want %d", len(surface.launches), len(want))
	}
	for i, l := range surface.launches {
		if *l.bounds != want[i] {
			t.Errorf("player %d bounds = %+v, want %+v", i, *l.bounds, want[i])
		}
		if !strings.HasSuffix(l.url, streams[i].Login) {
			t.Errorf("player %d url = %q", i, l.url)
		}
	}
}

func TestTileBoundsCentered(t *testing.T) {
	bounds := newPlayback(&fakeSurface{}, 1920, 1200).TileBounds(1)
	if len(bounds) != 1 {
		t.Fatalf("got %d bounds", len(bounds))
	}
	if got := bounds[0]; got.Y != 60 || got.Width != 1920 || got.Height != 1080 {
		t.Errorf("bounds = %+v, want 1920x1080 at y=60", got)
	}
}

func TestPlayTiledReportsFailures(t *testing.T) {
	surface := &fakeSurface{failURL: "https://www.twitch.tv/login_B"}
	err := newPlayback(surface, 1920, 1080).PlayTiled(snap("A", "B").Streams)
	if !errors.Is(err, domain.ErrNoPlayer) {
		t.Errorf("err = %v, want ErrNoPlayer", err)
	}
	if len(surface.launches) != 1 {
		t.Errorf("launched %d, want the healthy stream only", len(surface.launches))
	}
}

func TestPlayTiledRejectsEmpty(t *testing.T) {
	if err := newPlayback(&fakeSurface{}, 1920, 1080).PlayTiled(nil); err == nil {
		t.Error("expected error for empty selection")
	}
	if err := newPlayback(&fakeSurface{}, 0, 0).PlayTiled(snap("A").Streams); err == nil {
		t.Error("expected error for zero screen")
	}
}

func TestOpenEmbeds(t *testing.T) {
	surface := &fakeSurface{}
	p := newPlayback(surface, 1920, 1080)
	if err := p.OpenVideoEmbed(stream("A")); err != nil {
		t.Fatal(err)
	}
	if err := p.OpenChatEmbed(stream("A")); err != nil {
		t.Fatal(err)
	}
	if len(surface.opened) != 2 {
		t.Fatalf("opened = %v", surface.opened)
	}
	if !strings.HasPrefix(surface.opened[0], "https://player.twitch.tv/?") || !strings.Contains(surface.opened[0], "parent=example.com") {
		t.Errorf("video embed = %q", surface.opened[0])
	}
	if !strings.Contains(surface.opened[1], "/embed/login_A/chat") {
		t.Errorf("chat embed = %q", surface.opened[1])
	}
}
