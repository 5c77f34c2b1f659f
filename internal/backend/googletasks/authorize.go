package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"stickylist/internal/config"
	"stickylist/internal/service"
)

const (
	// OAuth callback timeout
	callbackTimeout = 5 * time.Minute

	// Token exchange timeout
	exchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	startPort = 8085

	// Max port attempts
	maxPortAttempts = 5
)

// ErrNoOAuthClient is returned when oauth_client.json is missing.
var ErrNoOAuthClient = errors.New("oauth_client.json not found")

// Authorize runs the OAuth loopback flow with PKCE and saves the token to
// google_token.json. The consent URL is written to prompt.
func Authorize(ctx context.Context, cfg *config.Config, prompt io.Writer) error {
	if !cfg.HasOAuthClient() {
		return ErrNoOAuthClient
	}
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return err
	}

	port, listener, err := listenLoopback()
	if err != nil {
		return fmt.Errorf("could not bind to local port for OAuth callback: %w", err)
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(prompt, "Open this URL in your browser:")
	fmt.Fprintln(prompt, authURL)

	code, err := waitForCode(ctx, listener)
	if err != nil {
		return err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("%w: failed to exchange code for token: %w", service.ErrAuthFailed, err)
	}

	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveToken(cfg.GoogleTokenPath(), token)
}

// HasValidToken reports whether google_token.json holds a token that can
// still be refreshed.
func HasValidToken(ctx context.Context, cfg *config.Config) bool {
	data, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return false
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, &token).Token()
	return err == nil
}

// SaveToken saves an OAuth token to a file with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func waitForCode(ctx context.Context, listener net.Listener) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- errors.New("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", fmt.Errorf("%w: %w", service.ErrAuthFailed, err)
	case <-time.After(callbackTimeout):
		return "", fmt.Errorf("%w: oauth callback timed out", service.ErrAuthFailed)
	case <-ctx.Done():
		return "", fmt.Errorf("%w: cancelled", service.ErrAuthFailed)
	}
}

// listenLoopback binds the first free port from startPort on.
func listenLoopback() (int, net.Listener, error) {
	var lastErr error
	for i := 0; i < maxPortAttempts; i++ {
		port := startPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
		lastErr = err
	}
	return 0, nil, lastErr
}
