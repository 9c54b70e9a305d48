package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/newsmate/internal/client/newsmate"
	"github.com/zhouzirui/newsmate/internal/config"
	"github.com/zhouzirui/newsmate/internal/logging"
	"github.com/zhouzirui/newsmate/internal/notify"
	"github.com/zhouzirui/newsmate/internal/render"
	"github.com/zhouzirui/newsmate/internal/service/session"
)

var errQuit = errors.New("quit")

const helpText = `Commands:
  /reset    start a new conversation
  /history  reload the conversation from the server
  /help     show this help
  /quit     leave`

// remote is a session.Remote that owns a connection.
type remote interface {
	session.Remote
	io.Closer
}

type httpRemote struct{ *newsmate.Client }

func (httpRemote) Close() error { return nil }

func newRemote(cfg config.ClientConfig, logger zerolog.Logger) (remote, error) {
	switch cfg.Transport {
	case config.TransportHTTP, "":
		return httpRemote{newsmate.New(newsmate.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.HTTPTimeout,
			Logger:  logger.With().Str("component", "http").Logger(),
		})}, nil
	case config.TransportWebSocket:
		return newsmate.NewWSClient(cfg.WebSocketURL, logger.With().Str("component", "ws").Logger()), nil
	default:
		return nil, errors.Errorf("unknown transport %q", cfg.Transport)
	}
}

// prompt holds the line being submitted until the session accepts it.
type prompt struct {
	mu    sync.Mutex
	draft string
}

func (p *prompt) set(line string) {
	p.mu.Lock()
	p.draft = line
	p.mu.Unlock()
}

func (p *prompt) pending() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

func (p *prompt) ClearInput() { p.set("") }

type app struct {
	session    *session.Session
	transcript *render.Transcript
	notifier   *notify.Console
	prompt     *prompt
	out        io.Writer
	logger     zerolog.Logger
}

func newApp(cfg *config.Config, rem session.Remote, out io.Writer, logger zerolog.Logger) (*app, error) {
	styled := isTerminal(out)
	transcript, err := render.NewTranscript(out, render.Options{Styled: styled})
	if err != nil {
		return nil, err
	}

	a := &app{
		transcript: transcript,
		notifier:   notify.NewConsole(out, styled),
		prompt:     &prompt{},
		out:        out,
		logger:     logger,
	}
	a.session = session.New(rem, session.Options{
		SessionID:          cfg.Client.SessionID,
		Notifier:           a.notifier,
		Errors:             logging.NewErrorLogger(logger.With().Str("component", "session").Logger()),
		Input:              a.prompt,
		ResponseWarning:    cfg.Client.ResponseWarning,
		EmptyReplyFallback: cfg.Client.EmptyReplyFallback,
		Logger:             logger,
	})
	return a, nil
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) error {
	logger := logging.New(cfg.Logging, errOut)

	rem, err := newRemote(cfg.Client, logger)
	if err != nil {
		return err
	}
	defer rem.Close()

	a, err := newApp(cfg, rem, out, logger)
	if err != nil {
		return err
	}
	defer a.session.Close()

	a.session.Mount(ctx)
	if err := a.render(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Type /help for commands.")

	lines := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.readInput(gctx, in, lines) })
	g.Go(func() error { return a.loop(gctx, lines) })

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// readInput forwards stdin lines to the loop. Scanning happens on a detached
// goroutine since a blocked terminal read cannot be interrupted.
func (a *app) readInput(ctx context.Context, in io.Reader, lines chan<- string) error {
	done := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := scanner.Text()
			if a.session.Busy() {
				a.notifier.Notify(session.LevelInfo, "Still waiting for the previous reply.")
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				done <- nil
				return
			}
		}
		done <- scanner.Err()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return errors.Wrap(err, "read input")
	}
}

func (a *app) loop(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := a.handle(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (a *app) handle(ctx context.Context, line string) error {
	switch strings.TrimSpace(line) {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "/reset":
		a.session.Reset(ctx)
	case "/history":
		if a.session.Mount(ctx) {
			a.transcript.Reset()
		}
	default:
		a.prompt.set(line)
		outcome := a.session.Submit(ctx, line)
		a.logger.Debug().Stringer("outcome", outcome).Msg("message handled")
		if a.prompt.pending() != "" {
			// Rejected input leaves nothing new to draw.
			return nil
		}
	}
	return a.render()
}

func (a *app) render() error {
	return a.transcript.Sync(a.session.View())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
