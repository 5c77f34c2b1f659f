// Package session manages the login state: credentials exchange, the
// stored session token and the token source for authenticated requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"stickylist/internal/logging"
	"stickylist/internal/mirror"
	"stickylist/internal/service"
)

// GenericFailure is shown when the server gives no message.
const GenericFailure = "An error occurred"

// PasswordMismatch is the register validation message.
const PasswordMismatch = "Passwords do not match!"

// Manager owns the session token stored in the mirror.
type Manager struct {
	auth  service.Authenticator
	store mirror.Store
	log   log.FieldLogger
}

// New creates a Manager. auth may be nil for backends without account
// management; Login and Register then fail with ErrAuthFailed.
func New(auth service.Authenticator, store mirror.Store, logger log.FieldLogger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{auth: auth, store: store, log: logger}
}

// Login exchanges credentials for a token and persists it under the
// token key.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if m.auth == nil {
		return fmt.Errorf("%w: backend does not support login", service.ErrAuthFailed)
	}
	email = strings.TrimSpace(email)

	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.log.WithError(err).Debug("login failed")
		return authFailure(err)
	}
	if err := m.store.Set(ctx, mirror.KeyToken, token); err != nil {
		return fmt.Errorf("%w: %w", service.ErrMirrorWriteFailed, err)
	}
	m.log.WithField("email", email).Debug("logged in")
	return nil
}

// Register creates an account. Mismatched passwords fail with
// ErrValidationFailed before any request is sent.
func (m *Manager) Register(ctx context.Context, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return fmt.Errorf("%w: %s", service.ErrValidationFailed, PasswordMismatch)
	}
	if m.auth == nil {
		return fmt.Errorf("%w: backend does not support registration", service.ErrAuthFailed)
	}
	if err := m.auth.Register(ctx, strings.TrimSpace(email), password); err != nil {
		m.log.WithError(err).Debug("register failed")
		return authFailure(err)
	}
	return nil
}

// Token returns the stored session token.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return storedToken(ctx, m.store)
}

// LoggedIn reports whether a session token is stored.
func (m *Manager) LoggedIn(ctx context.Context) (bool, error) {
	_, err := m.Token(ctx)
	if errors.Is(err, service.ErrNotLoggedIn) {
		return false, nil
	}
	return err == nil, err
}

// Logout removes the stored token. It reports whether a token was present.
func (m *Manager) Logout(ctx context.Context) (bool, error) {
	ok, err := m.LoggedIn(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := m.store.Delete(ctx, mirror.KeyToken); err != nil {
		return false, err
	}
	return true, nil
}

// Status describes the stored session.
type Status struct {
	LoggedIn bool
	// Opaque is set when the token is not a parseable JWT.
	Opaque    bool
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (s Status) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Status inspects the stored token. JWT claims are read without
// verification and only for display.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	token, err := m.Token(ctx)
	if errors.Is(err, service.ErrNotLoggedIn) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}

	st := Status{LoggedIn: true}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		st.Opaque = true
		return st, nil
	}
	if sub, err := claims.GetSubject(); err == nil {
		st.Subject = sub
	}
	if st.Subject == "" {
		if id, ok := claims["id"].(string); ok {
			st.Subject = id
		}
	}
	if email, ok := claims["email"].(string); ok {
		st.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		st.ExpiresAt = exp.Time
	}
	return st, nil
}

// TokenSource returns an oauth2.TokenSource that reads the session token
// from store on every call.
func TokenSource(ctx context.Context, store mirror.Store) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store}
}

type storeTokenSource struct {
	ctx   context.Context
	store mirror.Store
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := storedToken(s.ctx, s.store)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func storedToken(ctx context.Context, store mirror.Store) (string, error) {
	token, ok, err := store.Get(ctx, mirror.KeyToken)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		return "", service.ErrNotLoggedIn
	}
	return token, nil
}

func authFailure(err error) error {
	if errors.Is(err, service.ErrTimeout) {
		return fmt.Errorf("%w: %w", service.ErrAuthFailed, err)
	}
	return fmt.Errorf("%w: %s", service.ErrAuthFailed, service.UserMessage(err, GenericFailure))
}
