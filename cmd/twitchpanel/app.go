package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/twitchpanel/internal/adapter"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/mmcdole/twitchpanel/internal/metrics"
	"github.com/mmcdole/twitchpanel/internal/service"
	"github.com/mmcdole/twitchpanel/internal/store"
	"github.com/mmcdole/twitchpanel/internal/tui"
	"github.com/mmcdole/twitchpanel/internal/twitch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// app holds what every command needs: configuration and logging
type app struct {
	cfg        *adapter.Config
	configPath string
	logger     *slog.Logger
	logCloser  io.Closer
}

func loadApp(opts *options) (*app, error) {
	if err := adapter.LoadEnv(opts.envFile); err != nil {
		return nil, err
	}

	path := adapter.ConfigFile(opts.configPath)
	cfg, err := adapter.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	a := &app{cfg: cfg, configPath: path}
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	a.logger = logger
	a.logCloser = closer
	slog.SetDefault(logger)
	return a, nil
}

func (a *app) Close() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// requireClientID fails with setup instructions when no application is registered
func (a *app) requireClientID() error {
	if a.cfg.IsConfigured() {
		return nil
	}
	return fmt.Errorf("twitch.client_id is not set: register an application at https://dev.twitch.tv/console "+
		"with redirect URL %s and put its client id in %s (or TWITCHPANEL_TWITCH_CLIENT_ID)",
		a.cfg.Twitch.RedirectURI, a.configPath)
}

// twitchStack is the Twitch-facing half of the composition root
type twitchStack struct {
	launcher *adapter.Launcher
	client   *twitch.Client
	authn    *twitch.Authenticator
	prefs    *store.PreferenceStore // nil when the database could not be opened
	session  *service.SessionService
	auth     *service.AuthService
}

func (a *app) newTwitchStack() (*twitchStack, error) {
	if err := a.requireClientID(); err != nil {
		return nil, err
	}
	cfg := a.cfg

	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, a.logger)

	client, err := twitch.NewClient(twitch.ClientConfig{
		ClientID:    cfg.Twitch.ClientID,
		AccessToken: cfg.Twitch.AccessToken,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	authn, err := twitch.NewAuthenticator(twitch.AuthConfig{
		ClientID:    cfg.Twitch.ClientID,
		RedirectURI: cfg.Twitch.RedirectURI,
	}, cfg.Twitch.AccessToken, launcher.OpenURL, a.logger)
	if err != nil {
		return nil, err
	}
	// A rejected token must not be offered again; the next login runs the browser flow
	client.OnUnauthorized(authn.Clear)

	s := &twitchStack{launcher: launcher, client: client, authn: authn}

	var prefs domain.PreferenceStore
	if p, err := store.NewPreferenceStore(adapter.GetDataPath(), cfg.Twitch.ClientID); err != nil {
		a.logger.Warn("preferences unavailable, selections will not persist", "error", err)
	} else {
		s.prefs = p
		prefs = p
	}

	s.session = service.NewSessionService(prefs, domain.DeviceClass(cfg.Session.Device), a.logger)
	s.auth = service.NewAuthService(authn, client, adapter.TokenFile{Path: a.configPath}, s.session, a.logger)
	return s, nil
}

func (s *twitchStack) Close() {
	if s.prefs != nil {
		s.prefs.Close()
	}
}

// runDashboard wires every service and runs the TUI until the user quits
func runDashboard(ctx context.Context, opts *options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("twitchpanel needs an interactive terminal; see --help for the other commands")
	}

	a, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger
	cfg := a.cfg

	logger.Info("starting twitchpanel", "version", Version)

	stack, err := a.newTwitchStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	if !cfg.HasToken() {
		fmt.Println("No Twitch token yet; opening your browser to sign in.")
		tok, err := loginWithSpinner(ctx, stack.auth)
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		fmt.Printf("✓ Signed in as %s\n", tok.Login)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	poller := service.NewPoller(stack.client, stack.session, cfg.Poll.Interval, logger)
	poller.SetObserver(m)

	chatSvc := service.NewChatService(twitch.NewChatClient(twitch.DefaultChatURL, logger), logger)
	defer chatSvc.Close()

	playbackSvc := service.NewPlaybackService(stack.launcher, service.PlaybackConfig{
		ScreenWidth:  cfg.Player.ScreenWidth,
		ScreenHeight: cfg.Player.ScreenHeight,
		AspectRatio:  cfg.UI.AspectRatio,
		EmbedParent:  cfg.Embed.Parent,
		Muted:        cfg.Player.Muted,
	}, logger)

	model := tui.NewModel(ctx, tui.Services{
		Session:  stack.session,
		Poller:   poller,
		Chat:     chatSvc,
		Playback: playbackSvc,
		Auth:     stack.auth,
		Logger:   logger,
	}, tui.Config{
		AspectRatio:  cfg.UI.AspectRatio,
		CellAspect:   cfg.UI.CellAspect,
		SidebarWidth: cfg.UI.SidebarWidth,
		ChatWidth:    cfg.UI.ChatWidth,
	})

	poller.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		logger.Info("starting TUI")
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Error("TUI error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})

	if cfg.Metrics.Addr != "" {
		updateGauges := func() {
			v := stack.session.View()
			m.SetSelection(len(v.Selected), v.ChatTarget != nil)
		}
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, metrics.Router(m, updateGauges, logger), logger)
		})
	}

	err = g.Wait()
	logger.Info("shutting down")
	return err
}
