package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/twitchpanel/internal/adapter"
	"github.com/mmcdole/twitchpanel/internal/service"
	"github.com/mmcdole/twitchpanel/internal/tui/styles"
	"github.com/mmcdole/twitchpanel/internal/twitch"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                              \r"

func newLoginCmd(opts *options) *cobra.Command {
	var paste bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize twitchpanel to read the channels you follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			stack, err := a.newTwitchStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			var tok twitch.Token
			if paste {
				tok, err = pasteToken(stack.authn, a.configPath)
			} else {
				tok, err = loginWithSpinner(cmd.Context(), stack.auth)
			}
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s", tok.Login)
			if tok.ExpiresIn > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (token expires in %s)", tok.ExpiresIn.Round(time.Minute))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&paste, "paste", false, "paste an existing access token instead of opening the browser")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and saved selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			stack, err := a.newTwitchStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.auth.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
			return nil
		},
	}
}

// pasteToken reads a token without echo, validates it and stores it
func pasteToken(authn *twitch.Authenticator, configPath string) (twitch.Token, error) {
	var raw string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Access token: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return twitch.Token{}, fmt.Errorf("failed to read token: %w", err)
		}
		raw = string(b)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return twitch.Token{}, fmt.Errorf("failed to read token: %w", err)
		}
		raw = line
	}

	raw = strings.TrimPrefix(strings.TrimSpace(raw), "oauth:")
	if raw == "" {
		return twitch.Token{}, errors.New("token cannot be empty")
	}

	tok, err := authn.Validate(raw)
	if err != nil {
		return twitch.Token{}, err
	}
	if err := adapter.SaveToken(configPath, tok.AccessToken); err != nil {
		return twitch.Token{}, err
	}
	return tok, nil
}

// loginWithSpinner runs the browser flow with a visual spinner
func loginWithSpinner(ctx context.Context, auth *service.AuthService) (twitch.Token, error) {
	type result struct {
		tok twitch.Token
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		tok, err := auth.Login(ctx, true)
		resultCh <- result{tok, err}
	}()

	frame := 0
	label := " Waiting for authorization in your browser..."
	fmt.Printf("\r%s%s", styles.SpinnerFrames[frame], label)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.tok, res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s%s", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], label)
		}
	}
}
