package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "twitchpanel"
	envPrefix      = "TWITCHPANEL"
	configFileName = "config.yaml"
)

// Config holds all application configuration
type Config struct {
	Twitch  TwitchConfig  `mapstructure:"twitch" yaml:"twitch"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Player  PlayerConfig  `mapstructure:"player" yaml:"player"`
	Embed   EmbedConfig   `mapstructure:"embed" yaml:"embed"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// TwitchConfig holds the application registration and the user's token
type TwitchConfig struct {
	ClientID    string `mapstructure:"client_id" yaml:"client_id"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token"`
	RedirectURI string `mapstructure:"redirect_uri" yaml:"redirect_uri"` // must match the app registration
}

// PollConfig holds directory polling configuration
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// SessionConfig holds per-device behaviour
type SessionConfig struct {
	Device string `mapstructure:"device" yaml:"device"` // "desktop" or "mobile"
}

// UIConfig holds terminal layout configuration
type UIConfig struct {
	AspectRatio  float64 `mapstructure:"aspect_ratio" yaml:"aspect_ratio"`
	CellAspect   float64 `mapstructure:"cell_aspect" yaml:"cell_aspect"` // terminal cell height / width
	SidebarWidth int     `mapstructure:"sidebar_width" yaml:"sidebar_width"`
	ChatWidth    int     `mapstructure:"chat_width" yaml:"chat_width"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command      string   `mapstructure:"command" yaml:"command"`
	Args         []string `mapstructure:"args" yaml:"args"`
	ScreenWidth  int      `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight int      `mapstructure:"screen_height" yaml:"screen_height"`
	Muted        bool     `mapstructure:"muted" yaml:"muted"`
}

// EmbedConfig holds browser embed configuration
type EmbedConfig struct {
	Parent string `mapstructure:"parent" yaml:"parent"`
}

// MetricsConfig holds the optional metrics listener
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // empty disables the listener
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Twitch: TwitchConfig{
			RedirectURI: "http://localhost:3000/",
		},
		Poll: PollConfig{
			Interval: 30 * time.Second,
		},
		Session: SessionConfig{
			Device: "desktop",
		},
		UI: UIConfig{
			AspectRatio:  16.0 / 9.0,
			CellAspect:   2.0,
			SidebarWidth: 36,
			ChatWidth:    44,
		},
		Player: PlayerConfig{
			Command:      "",
			Args:         []string{},
			ScreenWidth:  1920,
			ScreenHeight: 1080,
			Muted:        true,
		},
		Embed: EmbedConfig{
			Parent: "localhost",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultDataPath returns the directory holding the preference database
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// GetDataPath returns the preference database directory
func GetDataPath() string {
	return defaultDataPath()
}

// ConfigFile returns the config file path: explicit when set, otherwise the
// default location.
func ConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(defaultConfigPath(), configFileName)
}

// LoadEnv loads .env files into the environment. A missing file is not an
// error; variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	// Environment variable overrides, e.g. TWITCHPANEL_TWITCH_ACCESS_TOKEN
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so env overrides apply even when the
// config file omits them
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("twitch.client_id", cfg.Twitch.ClientID)
	v.SetDefault("twitch.access_token", cfg.Twitch.AccessToken)
	v.SetDefault("twitch.redirect_uri", cfg.Twitch.RedirectURI)
	v.SetDefault("poll.interval", cfg.Poll.Interval)
	v.SetDefault("session.device", cfg.Session.Device)
	v.SetDefault("ui.aspect_ratio", cfg.UI.AspectRatio)
	v.SetDefault("ui.cell_aspect", cfg.UI.CellAspect)
	v.SetDefault("ui.sidebar_width", cfg.UI.SidebarWidth)
	v.SetDefault("ui.chat_width", cfg.UI.ChatWidth)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("player.screen_width", cfg.Player.ScreenWidth)
	v.SetDefault("player.screen_height", cfg.Player.ScreenHeight)
	v.SetDefault("player.muted", cfg.Player.Muted)
	v.SetDefault("embed.parent", cfg.Embed.Parent)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment.
// Precedence: defaults < config file < env vars.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(path)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate reports configuration that would make the session unusable
func (c *Config) Validate() error {
	var errs []error
	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Session.Device != "desktop" && c.Session.Device != "mobile" {
		errs = append(errs, fmt.Errorf("session.device must be desktop or mobile, got %q", c.Session.Device))
	}
	if c.UI.AspectRatio <= 0 {
		errs = append(errs, fmt.Errorf("ui.aspect_ratio must be positive, got %v", c.UI.AspectRatio))
	}
	if c.UI.CellAspect <= 0 {
		errs = append(errs, fmt.Errorf("ui.cell_aspect must be positive, got %v", c.UI.CellAspect))
	}
	return errors.Join(errs...)
}

// IsConfigured returns true if the client id is set
func (c *Config) IsConfigured() bool {
	return c.Twitch.ClientID != ""
}

// HasToken returns true if a user token is stored
func (c *Config) HasToken() bool {
	return c.Twitch.AccessToken != ""
}

// SaveToken updates just the access token in the config file at path
func SaveToken(path, token string) error {
	return updateConfig(path, map[string]any{"twitch.access_token": token})
}

// ClearToken removes the stored access token while preserving other settings
func ClearToken(path string) error {
	return SaveToken(path, "")
}

// updateConfig rewrites the file at path with keys changed. Only keys
// present in the file (plus the changed ones) are written.
func updateConfig(path string, keys map[string]any) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	for k, val := range keys {
		v.Set(k, val)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The token lives here; keep the file private
	return os.Chmod(path, 0o600)
}

// Dump renders the effective configuration as YAML with the token redacted
func (c *Config) Dump() ([]byte, error) {
	redacted := *c
	if redacted.Twitch.AccessToken != "" {
		redacted.Twitch.AccessToken = "<redacted>"
	}
	data, err := yaml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// WriteDefaultConfig writes the default configuration to path unless a file
// already exists there
func WriteDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// TokenFile persists the access token into one config file
type TokenFile struct {
	Path string
}

// SaveToken writes token to the config file
func (f TokenFile) SaveToken(token string) error {
	return SaveToken(f.Path, token)
}

// ClearToken removes the token from the config file
func (f TokenFile) ClearToken() error {
	return ClearToken(f.Path)
}
