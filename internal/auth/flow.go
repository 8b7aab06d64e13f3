// Package auth implements the Google sign-in flow and the signed session
// tokens that carry the user's Gmail access token between requests.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const stateTTL = 5 * time.Minute

// ErrInvalidState means the callback carried an unknown or expired state.
var ErrInvalidState = errors.New("invalid or expired state parameter")

// Scopes requested at sign-in.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
	gmail.GmailModifyScope,
	oauth2v2.OpenIDScope,
	oauth2v2.UserinfoProfileScope,
	oauth2v2.UserinfoEmailScope,
}

// NewOAuthConfig builds the Google OAuth client configuration.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// Flow runs the authorization code flow. Issued states live in memory for a
// few minutes and are single use.
type Flow struct {
	mu     sync.Mutex
	cfg    *oauth2.Config
	states map[string]time.Time
	opts   []option.ClientOption
}

// NewFlow creates a Flow. opts are passed to the userinfo client.
func NewFlow(cfg *oauth2.Config, opts ...option.ClientOption) *Flow {
	return &Flow{
		cfg:    cfg,
		states: make(map[string]time.Time),
		opts:   opts,
	}
}

// LoginURL returns the consent page URL with a fresh state.
func (f *Flow) LoginURL() (string, error) {
	state, err := f.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	return f.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (f *Flow) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.states[state] = now.Add(stateTTL)

	for s, exp := range f.states {
		if exp.Before(now) {
			delete(f.states, s)
		}
	}

	return state, nil
}

func (f *Flow) validateState(state string) bool {
	if state == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	expiry, exists := f.states[state]
	if !exists {
		return false
	}

	delete(f.states, state)

	return !time.Now().After(expiry)
}

// Exchange trades an authorization code for a token after checking state.
func (f *Flow) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if !f.validateState(state) {
		return nil, ErrInvalidState
	}

	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	return tok, nil
}

// UserInfo fetches the signed-in user's profile.
func (f *Flow) UserInfo(ctx context.Context, tok *oauth2.Token) (UserInfo, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(f.cfg.TokenSource(ctx, tok))}, f.opts...)
	svc, err := oauth2v2.NewService(ctx, opts...)
	if err != nil {
		return UserInfo{}, fmt.Errorf("oauth2v2.NewService failed: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return UserInfo{}, fmt.Errorf("svc.Userinfo.Get failed: %w", err)
	}

	return UserInfo{
		Email:      info.Email,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}
