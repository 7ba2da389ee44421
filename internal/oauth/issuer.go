package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rechat/reso-odata/internal/platform/metrics"
)

// tokenStore is the subset of *Store the issuer needs, narrowed to an
// interface so tests can fake it without a real database.
type tokenStore interface {
	Save(ctx context.Context, token, clientID string, expiresAt time.Time) error
	SaveRefresh(ctx context.Context, token, clientID string, expiresAt time.Time) error
	GetRefresh(ctx context.Context, token string) (*Grant, error)
	DeleteRefresh(ctx context.Context, token string) error
}

// Issuer handles the client_credentials and refresh_token grants against a
// single configured client, per spec.md §4.8 and §8 scenario 2.
type Issuer struct {
	store        tokenStore
	clientID     string
	clientSecret string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewIssuer(store tokenStore, clientID, clientSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		store:        store,
		clientID:     clientID,
		clientSecret: clientSecret,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

// TokenResponse is the RFC 6749 access token response shape.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// GrantError is an RFC 6749 token-endpoint error: {"error": slug}.
type GrantError struct {
	Slug        string
	Description string
}

func (e *GrantError) Error() string { return e.Slug }

func (e *GrantError) JSON() map[string]string {
	body := map[string]string{"error": e.Slug}
	if e.Description != "" {
		body["error_description"] = e.Description
	}
	return body
}

// IssueClientCredentials validates clientID/clientSecret against the single
// configured client and, on success, mints a fresh access+refresh pair.
func (iss *Issuer) IssueClientCredentials(ctx context.Context, clientID, clientSecret string) (*TokenResponse, *GrantError) {
	if clientID != iss.clientID || clientSecret != iss.clientSecret {
		metrics.TokensIssued.WithLabelValues("client_credentials", "rejected").Inc()
		return nil, &GrantError{Slug: "invalid_client"}
	}
	resp, grantErr := iss.issue(ctx, clientID)
	if grantErr != nil {
		metrics.TokensIssued.WithLabelValues("client_credentials", "error").Inc()
	} else {
		metrics.TokensIssued.WithLabelValues("client_credentials", "issued").Inc()
	}
	return resp, grantErr
}

// RefreshAccessToken validates a refresh token and, on success, mints a
// fresh access token. Per spec.md §4.8 the refresh token itself is reused,
// not reissued: the client gets back the same refresh_token it presented.
func (iss *Issuer) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, *GrantError) {
	grant, err := iss.store.GetRefresh(ctx, refreshToken)
	if err != nil {
		return nil, &GrantError{Slug: "server_error"}
	}
	if grant == nil {
		return nil, &GrantError{Slug: "invalid_grant"}
	}
	if grant.ExpiresAt.Before(nowFunc()) {
		_ = iss.store.DeleteRefresh(ctx, refreshToken)
		return nil, &GrantError{Slug: "invalid_grant"}
	}

	accessToken, err := randomToken()
	if err != nil {
		metrics.TokensIssued.WithLabelValues("refresh_token", "error").Inc()
		return nil, &GrantError{Slug: "server_error"}
	}
	if err := iss.store.Save(ctx, accessToken, grant.ClientID, nowFunc().Add(iss.accessTTL)); err != nil {
		metrics.TokensIssued.WithLabelValues("refresh_token", "error").Inc()
		return nil, &GrantError{Slug: "server_error"}
	}

	metrics.TokensIssued.WithLabelValues("refresh_token", "issued").Inc()
	return &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(iss.accessTTL.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

func (iss *Issuer) issue(ctx context.Context, clientID string) (*TokenResponse, *GrantError) {
	accessToken, err := randomToken()
	if err != nil {
		return nil, &GrantError{Slug: "server_error"}
	}
	refreshToken, err := randomToken()
	if err != nil {
		return nil, &GrantError{Slug: "server_error"}
	}

	now := nowFunc()
	if err := iss.store.Save(ctx, accessToken, clientID, now.Add(iss.accessTTL)); err != nil {
		return nil, &GrantError{Slug: "server_error"}
	}
	if err := iss.store.SaveRefresh(ctx, refreshToken, clientID, now.Add(iss.refreshTTL)); err != nil {
		return nil, &GrantError{Slug: "server_error"}
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(iss.accessTTL.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

// randomToken produces a 64-character hex string from 32 random bytes.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// nowFunc is a seam for tests; production always uses wall-clock time.
var nowFunc = time.Now
