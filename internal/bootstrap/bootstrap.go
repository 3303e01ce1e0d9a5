// Package bootstrap runs the server until it is interrupted, then releases its resources.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds the time left to shutdown hooks.
const DefaultShutdownTimeout = 10 * time.Second

// App runs a long-lived function and calls the registered hooks when SIGINT or SIGTERM arrives.
type App struct {
	ShutdownTimeout time.Duration

	mu    sync.Mutex
	hooks []shutdownHook
}

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

func New() *App {
	return &App{ShutdownTimeout: DefaultShutdownTimeout}
}

// AddShutdownHook registers fn under name. Hooks run in reverse registration order, so the HTTP server
// registered last stops before the database it uses.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

// Run executes run until it returns or a signal is received. An error returned by run before
// any signal is returned as is.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		// run may return cleanly because it saw the signal first
		if err == nil && ctx.Err() != nil {
			return a.shutdown()
		}
		return err
	}
}

func (a *App) shutdown() error {
	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		hook := a.hooks[i]
		if err := hook.fn(ctx); err != nil {
			slog.Error("shutdown hook failed", "hook", hook.name, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Debug("shutdown hook done", "hook", hook.name)
	}
	return errors.Join(errs...)
}
