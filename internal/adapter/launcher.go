package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/layout"
)

// Launcher opens stream URLs in an external player, or pages in the browser
type Launcher struct {
	command      string   // configured player command, empty to auto-detect
	args         []string // additional arguments for the player
	geometryFlag string   // window geometry flag prefix, e.g. "--geometry="
	logger       *slog.Logger

	start func(name string, args ...string) error
	look  func(name string) (string, error)
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command (e.g., ["-n"])
}

// playerConfig defines platform-specific launch configurations for a player
type playerConfig struct {
	geometryFlag string                  // Window placement flag (e.g., "--geometry=")
	platforms    map[string][]launchPath // Platform -> launch paths to try in order
}

// players registry. Only players that resolve twitch.tv channel URLs on
// their own (through yt-dlp or streamlink) are listed.
var players = map[string]playerConfig{
	"mpv": {
		geometryFlag: "--geometry=",
		platforms: map[string][]launchPath{
			"darwin":  {{path: "mpv"}},
			"linux":   {{path: "mpv"}},
			"windows": {{path: "mpv"}},
		},
	},
	"iina": {
		geometryFlag: "--mpv-geometry=",
		platforms: map[string][]launchPath{
			"darwin": {
				{path: "open-a:IINA", openFlags: []string{"-n"}}, // IINA needs -n for new windows
			},
		},
	},
	"celluloid": {
		geometryFlag: "--mpv-geometry=",
		platforms: map[string][]launchPath{
			"linux": {{path: "celluloid"}},
		},
	},
	"streamlink": {
		platforms: map[string][]launchPath{
			"darwin":  {{path: "streamlink"}},
			"linux":   {{path: "streamlink"}},
			"windows": {{path: "streamlink"}},
		},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "mpv", "streamlink"},
	"linux":   {"mpv", "celluloid", "streamlink"},
	"windows": {"mpv", "streamlink"},
}

// NewLauncher creates a Launcher. The geometry flag is looked up from the
// player registry when command names a known player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start:   startCommand,
		look:    exec.LookPath,
	}
	if command != "" {
		if cfg, ok := players[playerName(command)]; ok {
			l.geometryFlag = cfg.geometryFlag
			logger.Debug("detected player geometry flag", "player", playerName(command), "flag", l.geometryFlag)
		}
	}
	return l
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// playerName normalizes a command path to its registry key
func playerName(command string) string {
	base := filepath.Base(command)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}

// geometryArg formats a window placement as WxH+X+Y
func geometryArg(flag string, b layout.Rect) string {
	return fmt.Sprintf("%s%dx%d+%d+%d", flag, b.Width, b.Height, b.X, b.Y)
}

// Launch opens url in the configured or first available player
func (l *Launcher) Launch(url string) error {
	return l.launch(url, nil)
}

// LaunchAt opens url in a player window placed at bounds. Players without a
// geometry flag open wherever the window manager puts them.
func (l *Launcher) LaunchAt(url string, bounds layout.Rect) error {
	return l.launch(url, &bounds)
}

func (l *Launcher) launch(url string, bounds *layout.Rect) error {
	// Tier 1: User configured a specific player
	if l.command != "" {
		args := append([]string{}, l.args...)
		if bounds != nil && l.geometryFlag != "" {
			args = append(args, geometryArg(l.geometryFlag, *bounds))
		} else if bounds != nil {
			l.logger.Warn("player window placement unsupported", "command", l.command)
		}
		return l.launchConfigured(url, args)
	}

	// Tier 2: Try the candidate chain for this platform
	if name, err := l.detectAndLaunch(url, bounds); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	return fmt.Errorf("%w: install mpv or set player.command", domain.ErrNoPlayer)
}

// launchConfigured launches the stream with the configured player
func (l *Launcher) launchConfigured(url string, args []string) error {
	l.logger.Info("launching player", "command", l.command, "args", args, "url", url)

	// On macOS, launch GUI apps with 'open -a' if the command is not in PATH
	if runtime.GOOS == "darwin" {
		if _, err := l.look(l.command); err != nil {
			var openFlags []string
			if cfg, ok := players[playerName(l.command)]; ok {
				for _, lp := range cfg.platforms["darwin"] {
					if strings.HasPrefix(lp.path, "open-a:") {
						openFlags = lp.openFlags
						break
					}
				}
			}
			return l.openWithApp(l.command, url, args, openFlags)
		}
	}

	if err := l.start(l.command, append(args, url)...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoPlayer, err)
	}
	return nil
}

// detectAndLaunch tries candidate players in order. Returns the player
// that succeeded.
func (l *Launcher) detectAndLaunch(url string, bounds *layout.Rect) (string, error) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		player := players[name]
		paths, ok := player.platforms[runtime.GOOS]
		if !ok {
			continue
		}

		var args []string
		if name == "streamlink" {
			args = append(args, "--player-passthrough=hls")
		}
		if bounds != nil && player.geometryFlag != "" {
			args = append(args, geometryArg(player.geometryFlag, *bounds))
		}

		for _, lp := range paths {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				err = l.openWithApp(app, url, args, lp.openFlags)
			} else if _, err = l.look(lp.path); err == nil {
				cmdArgs := append(append([]string{}, args...), url)
				if name == "streamlink" {
					cmdArgs = append(cmdArgs, "best")
				}
				err = l.start(lp.path, cmdArgs...)
			}

			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}

	return "", fmt.Errorf("no candidate players found")
}

// openWithApp launches a macOS app with "open -a"
func (l *Launcher) openWithApp(app, url string, playerArgs, openFlags []string) error {
	cmdArgs := append([]string{}, openFlags...)
	cmdArgs = append(cmdArgs, "-a", app)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	cmdArgs = append(cmdArgs, url)

	l.logger.Info("using macOS 'open -a' to launch app", "app", app, "args", cmdArgs)
	return l.start("open", cmdArgs...)
}

// OpenURL opens url with the system default handler
func (l *Launcher) OpenURL(url string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", url}
	default:
		name, args = "xdg-open", []string{url}
	}

	l.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
