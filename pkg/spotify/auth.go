package spotify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cadencebot/cadence/pkg/core"

	"github.com/Laky-64/gologging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// scopes are requested once at authorization time and cover playlist reads
// and writes only. Listening-history reads are deliberately outside this
// set, which is why TopItems can come back with a scope rejection.
var scopes = []string{
	"playlist-modify-public",
	"playlist-modify-private",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// renewThreshold is how close to expiry a token may get before a user-scoped
// call refreshes it first.
const renewThreshold = 15 * time.Second

// Credentials is one user's token set as held in persistence.
type Credentials struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// CredentialStore loads and saves per-user credentials. Credentials returns
// (nil, nil) for a user who never authorized.
type CredentialStore interface {
	Credentials(ctx context.Context, userID string) (*Credentials, error)
	SaveCredentials(ctx context.Context, creds Credentials) error
}

// AuthRequest is a pending authorization: the URL the user must visit, and
// the verifier and state the callback owner needs to finish the exchange.
type AuthRequest struct {
	URL      string
	Verifier string
	State    string
}

// NewAuthRequest builds a PKCE authorization request. Every call produces a
// fresh verifier and an unguessable state token.
func (c *Client) NewAuthRequest() AuthRequest {
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	return AuthRequest{
		URL:      c.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		Verifier: verifier,
		State:    state,
	}
}

// ExchangeCode redeems an authorization code against the verifier it was
// issued with and returns the resulting credentials for userID.
func (c *Client) ExchangeCode(ctx context.Context, userID, code, verifier string) (Credentials, error) {
	token, err := c.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Credentials{}, asServiceError(err)
	}
	return Credentials{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

// Refresh redeems the refresh token for a new access token. When the
// provider does not rotate the refresh token, the old one is kept.
func (c *Client) Refresh(ctx context.Context, creds Credentials) (Credentials, error) {
	source := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return Credentials{}, asServiceError(err)
	}

	next := Credentials{
		UserID:       creds.UserID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}
	return next, nil
}

// EnsureFresh returns credentials valid for at least renewThreshold,
// refreshing when needed. A burst of calls for the same user coalesces on
// one refresh: whoever wins the per-user lock does the round trip, and the
// rest pick up its result instead of re-redeeming a stale refresh token.
func (c *Client) EnsureFresh(ctx context.Context, creds Credentials) (Credentials, error) {
	if c.fresh(creds) {
		return creds, nil
	}

	state := c.refreshStateFor(creds.UserID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.done && state.creds.AccessToken != creds.AccessToken && c.fresh(state.creds) {
		return state.creds, nil
	}

	gologging.InfoF("[spotify] Refreshing the access token of %s.", creds.UserID)
	next, err := c.Refresh(ctx, creds)
	if err != nil {
		return Credentials{}, err
	}
	state.creds = next
	state.done = true
	return next, nil
}

// fresh reports whether creds stay valid for at least renewThreshold.
func (c *Client) fresh(creds Credentials) bool {
	return c.now().Add(renewThreshold).Before(creds.ExpiresAt)
}

// refreshStateFor returns the per-user refresh state, creating it on first
// use.
func (c *Client) refreshStateFor(userID string) *refreshState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.refreshes[userID]
	if !ok {
		state = &refreshState{}
		c.refreshes[userID] = state
	}
	return state
}

// asServiceError maps a token-endpoint rejection onto the shared external
// service error so callers see one failure shape for all remote calls.
func asServiceError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return &core.ExternalServiceError{
			Status: retrieve.Response.StatusCode,
			Body:   strings.TrimSpace(string(retrieve.Body)),
		}
	}
	return err
}
