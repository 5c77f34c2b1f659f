package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"stickylist/internal/config"
	"stickylist/internal/exitcode"
	"stickylist/internal/logging"
	"stickylist/internal/mirror"
	"stickylist/internal/service"
	"stickylist/internal/session"
)

// StoreFactory opens the local mirror store.
type StoreFactory func(ctx context.Context, cfg *config.Config) (mirror.Store, error)

// ServiceFactory creates the remote backend. The store holds the session
// token for backends that need one.
type ServiceFactory func(ctx context.Context, cfg *config.Config, store mirror.Store, logger log.FieldLogger) (service.Service, error)

// Env is what a command runs against. Store and Service are opened lazily
// so that commands like help never touch them.
type Env struct {
	Config *config.Config
	Log    log.FieldLogger
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	openStore   StoreFactory
	openService ServiceFactory

	store mirror.Store
	svc   service.Service
}

// NewEnv creates an Env. A nil store factory uses mirror.Open.
func NewEnv(cfg *config.Config, logger log.FieldLogger, in io.Reader, out, errOut io.Writer, stores StoreFactory, services ServiceFactory) *Env {
	if logger == nil {
		logger = logging.Discard()
	}
	if in == nil {
		in = strings.NewReader("")
	}
	if stores == nil {
		stores = mirror.Open
	}
	return &Env{
		Config:      cfg,
		Log:         logger,
		In:          in,
		Out:         out,
		ErrOut:      errOut,
		openStore:   stores,
		openService: services,
	}
}

// Store returns the mirror store, opening it on first use.
func (e *Env) Store(ctx context.Context) (mirror.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	store, err := e.openStore(ctx, e.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", e.Config.Mirror, err)
	}
	e.store = store
	return store, nil
}

// Service returns the backend, creating it on first use.
func (e *Env) Service(ctx context.Context) (service.Service, error) {
	if e.svc != nil {
		return e.svc, nil
	}
	if e.openService == nil {
		return nil, errors.New("no backend configured")
	}
	store, err := e.Store(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := e.openService(ctx, e.Config, store, e.Log)
	if err != nil {
		return nil, err
	}
	e.svc = svc
	return svc, nil
}

// Session returns a session manager over the store. The backend is used
// for credential exchange when it supports it.
func (e *Env) Session(ctx context.Context) (*session.Manager, error) {
	store, err := e.Store(ctx)
	if err != nil {
		return nil, err
	}
	var auth service.Authenticator
	if e.Config.Backend != config.BackendGoogleTasks {
		svc, err := e.Service(ctx)
		if err != nil {
			return nil, err
		}
		auth, _ = svc.(service.Authenticator)
	}
	return session.New(auth, store, e.Log), nil
}

// CheckAuth returns service.ErrNotLoggedIn when no credentials are stored
// for the configured backend.
func (e *Env) CheckAuth(ctx context.Context) error {
	if e.Config.Backend == config.BackendGoogleTasks {
		if !e.Config.HasGoogleToken() {
			return fmt.Errorf("%w (run: stickylist google-login)", service.ErrNotLoggedIn)
		}
		return nil
	}
	store, err := e.Store(ctx)
	if err != nil {
		return err
	}
	ok, err := sessionOver(store, e).LoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w (run: stickylist login)", service.ErrNotLoggedIn)
	}
	return nil
}

// Close releases the store.
func (e *Env) Close() error {
	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}

// Quiet reports whether informational output is suppressed.
func (e *Env) Quiet() bool {
	return e.Config.Quiet
}

// OK prints "ok" unless quiet.
func (e *Env) OK() {
	if !e.Quiet() {
		fmt.Fprintln(e.Out, "ok")
	}
}

// Fail prints err as a single error line and returns its exit code.
func (e *Env) Fail(err error) int {
	fmt.Fprintf(e.ErrOut, "error: %s\n", describe(err))
	return exitcode.For(err)
}

// Failf prints a usage error and returns exitcode.UserError.
func (e *Env) Failf(format string, args ...any) int {
	fmt.Fprintf(e.ErrOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// describe turns an error into the one-line message shown to the user.
func describe(err error) string {
	var remote *service.RemoteError
	switch {
	case errors.Is(err, service.ErrTimeout):
		return "backend error: request timed out"
	case errors.As(err, &remote) && !errors.Is(err, service.ErrNotLoggedIn) && !errors.Is(err, service.ErrNotFound):
		return "backend error: " + err.Error()
	}
	return err.Error()
}
