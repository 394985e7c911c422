package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"alpencams/internal/shared"
)

// LoginResult carries the outcome of an authorization flow.
type LoginResult struct {
	Identity *Identity
	err      error
}

func (r *LoginResult) Error() error {
	return r.err
}

// CallbackHandler handles the OAuth2 authorization-code callback.
type CallbackHandler struct {
	config      *oauth2.Config
	state       string
	resultChan  chan LoginResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler for the given OAuth2 config and CSRF state token.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		config:     config,
		state:      state,
		resultChan: make(chan LoginResult, 1),
	}
}

// ServeHTTP validates the state parameter, exchanges the code for a token,
// and resolves the token into an [Identity].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if r.URL.Query().Get("state") != h.state {
		err := fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
		h.send(LoginResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc)
		h.send(LoginResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(LoginResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	identity := identityFromToken(token)
	h.send(LoginResult{Identity: &identity})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Signed in</title></head>
<body><p>Signed in. You can close this window and return to the terminal.</p></body>
</html>
`)
}

func (h *CallbackHandler) send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one login result.
func (h *CallbackHandler) Result() <-chan LoginResult {
	return h.resultChan
}

// identityFromToken derives an [Identity] from the token response.
//
// Prefers the id_token's sub/email claims when the provider includes one,
// otherwise falls back to the access token string as an opaque id.
func identityFromToken(token *oauth2.Token) Identity {
	if raw, ok := token.Extra("id_token").(string); ok {
		if claims, err := decodeClaims(raw); err == nil {
			identity := Identity{ID: claims.Sub, Email: claims.Email}
			if identity.ID != "" {
				return identity
			}
		}
	}
	return Identity{ID: token.AccessToken}
}

type idClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// decodeClaims extracts claims from a JWT payload without verifying the
// signature; verification belongs to the provider exchange, which happened
// over TLS on the token endpoint.
func decodeClaims(raw string) (idClaims, error) {
	var claims idClaims
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return claims, fmt.Errorf("malformed id_token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("failed to decode id_token payload: %w", err)
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("failed to parse id_token claims: %w", err)
	}
	return claims, nil
}

// Login runs the full authorization-code flow: it serves the loopback
// callback, opens the provider's consent page in the browser, waits for the
// redirect, and signs the resulting identity into authCtx.
func Login(ctx context.Context, authCtx *Context, cfg shared.OAuthConfig) (*Identity, error) {
	if cfg.ClientID == "" || cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("%w: oauth section incomplete", shared.ErrInvalidConfig)
	}

	ocfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		Scopes: []string{"openid", "email"},
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	handler := NewCallbackHandler(ocfg, state)

	callbackURL, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	listener, err := net.Listen("tcp", callbackURL.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", callbackURL.Host, err)
	}

	mux := http.NewServeMux()
	mux.Handle(callbackURL.Path, handler)
	srv := &http.Server{Handler: mux}
	go srv.Serve(listener)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := ocfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if err := shared.OpenBrowser(authURL); err != nil {
		return nil, err
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return nil, result.Error()
		}
		authCtx.SignIn(*result.Identity)
		return result.Identity, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
