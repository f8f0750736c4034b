package telegram

import (
	"context"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/rs/zerolog"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
)

// Config carries the MTProto credentials of the transfer account. The session
// is a Telethon-format string session, either inline or in a file; the file
// form is what the deployment mounts as a secret.
type Config struct {
	AppID       int
	AppHash     string
	Session     string
	SessionFile string
}

// Factory dials one MTProto connection per transfer run. Runs never share a
// connection: flood-control state is per session, and interleaving two runs
// on one session would make the backoff accounting meaningless.
type Factory struct {
	cfg Config
	log zerolog.Logger
}

func NewFactory(cfg Config, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg: cfg,
		log: logger.With().Str("component", "telegram").Logger(),
	}
}

// Connect establishes a connection and blocks until it is ready for API
// calls. The returned client must be closed by the caller on every exit path.
func (f *Factory) Connect(ctx context.Context) (app.TransferClient, error) {
	storage, err := sessionStorage(ctx, f.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	tgClient := telegram.NewClient(f.cfg.AppID, f.cfg.AppHash, telegram.Options{
		SessionStorage: storage,
		NoUpdates:      true,
	})

	// client.Run owns the connection lifecycle, so it runs in its own
	// goroutine and the ready/err channels bridge it back to the caller.
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- tgClient.Run(runCtx, func(ctx context.Context) error {
			status, err := tgClient.Auth().Status(ctx)
			if err != nil {
				return errors.Wrap(err, "auth status")
			}
			if !status.Authorized {
				return errors.New("session is not authorized")
			}
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		stop()
		return nil, errors.Wrap(err, "connect")
	case <-ctx.Done():
		stop()
		<-done
		return nil, ctx.Err()
	}

	f.log.Debug().Msg("telegram connection established")
	return &Client{
		api:  tgClient.API(),
		stop: stop,
		done: done,
		log:  f.log,
	}, nil
}

func sessionStorage(ctx context.Context, cfg Config) (session.Storage, error) {
	raw := cfg.Session
	if raw == "" && cfg.SessionFile != "" {
		data, err := os.ReadFile(cfg.SessionFile)
		if err != nil {
			return nil, errors.Wrap(err, "read session file")
		}
		raw = strings.TrimSpace(string(data))
	}
	if raw == "" {
		return nil, errors.New("no session configured")
	}

	data, err := session.TelethonSession(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse telethon session")
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, errors.Wrap(err, "seed session storage")
	}
	return storage, nil
}

// Client is one live MTProto connection. Not safe for concurrent use; the
// engine drives it strictly sequentially.
type Client struct {
	api  tgAPI
	stop context.CancelFunc
	done chan error
	log  zerolog.Logger
}

// Close tears the connection down and waits for the run loop to exit.
func (c *Client) Close(ctx context.Context) error {
	c.stop()
	select {
	case err := <-c.done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
