package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/newsmate/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	sessionID string
	baseURL   string
	wsURL     string
	transport string
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "newsmate",
		Short:        "Chat with the NewsMate assistant from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(&cfg.Client, f)

			return run(cmd.Context(), cfg, os.Stdin, os.Stdout, os.Stderr)
		},
	}

	cmd.Flags().StringVar(&f.sessionID, "session", "", "conversation id (default from NEWSMATE_SESSION_ID)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "API base URL (default from NEWSMATE_BASE_URL)")
	cmd.Flags().StringVar(&f.wsURL, "ws-url", "", "websocket endpoint (default derived from the base URL)")
	cmd.Flags().StringVar(&f.transport, "transport", "", "http or ws (default from NEWSMATE_TRANSPORT)")

	return cmd
}

func applyFlags(c *config.ClientConfig, f flags) {
	if f.sessionID != "" {
		c.SessionID = f.sessionID
	}
	if f.baseURL != "" {
		c.BaseURL = strings.TrimRight(f.baseURL, "/")
		if f.wsURL == "" {
			c.WebSocketURL = config.WebSocketURLFor(c.BaseURL)
		}
	}
	if f.wsURL != "" {
		c.WebSocketURL = f.wsURL
	}
	if f.transport != "" {
		c.Transport = f.transport
	}
}
