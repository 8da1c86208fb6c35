package adapter

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
)

type started struct {
	name string
	args []string
}

func fakeLauncher(command string, installed ...string) (*Launcher, *[]started) {
	var calls []started
	l := NewLauncher(command, []string{"--mute=yes"}, NullLogger())
	if command == "" {
		l.args = nil
	}
	l.start = func(name string, args ...string) error {
		calls = append(calls, started{name: name, args: args})
		return nil
	}
	l.look = func(name string) (string, error) {
		for _, p := range installed {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
	return l, &calls
}

func TestLaunchAtConfiguredMpv(t *testing.T) {
	l, calls := fakeLauncher("/usr/local/bin/mpv", "/usr/local/bin/mpv")

	err := l.LaunchAt("https://www.twitch.tv/a", layout.Rect{X: 960, Y: 0, Width: 960, Height: 540})
	if err != nil {
		t.Fatalf("LaunchAt: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("calls = %+v", *calls)
	}
	got := strings.Join((*calls)[0].args, " ")
	want := "--mute=yes --geometry=960x540+960+0 https://www.twitch.tv/a"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestLaunchUnknownPlayerSkipsGeometry(t *testing.T) {
	l, calls := fakeLauncher("vlc", "vlc")

	if err := l.LaunchAt("https://www.twitch.tv/a", layout.Rect{Width: 10, Height: 10}); err != nil {
		t.Fatalf("LaunchAt: %v", err)
	}
	for _, a := range (*calls)[0].args {
		if strings.Contains(a, "geometry") {
			t.Errorf("unexpected geometry arg %q", a)
		}
	}
}

func TestLaunchNoPlayer(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("open -a always resolves on macOS")
	}
	l, _ := fakeLauncher("")
	err := l.Launch("https://www.twitch.tv/a")
	if !errors.Is(err, domain.ErrNoPlayer) {
		t.Errorf("err = %v, want ErrNoPlayer", err)
	}
}

func TestGeometryArg(t *testing.T) {
	got := geometryArg("--geometry=", layout.Rect{X: 5, Y: 7, Width: 640, Height: 360})
	if got != "--geometry=640x360+5+7" {
		t.Errorf("geometryArg = %q", got)
	}
}

func TestPlayerName(t *testing.T) {
	tests := map[string]string{
		"mpv":                          "mpv",
		"/usr/bin/MPV":                 "mpv",
		"/opt/celluloid/bin/Celluloid": "celluloid",
		"mpv.exe":                      "mpv",
	}
	for in, want := range tests {
		if got := playerName(in); got != want {
			t.Errorf("playerName(%q) = %q, want %q", in, got, want)
		}
	}
}
