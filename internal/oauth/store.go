// Package oauth implements the external token store contract from spec.md
// §4.8: a persisted PostgreSQL-backed token/refresh-token store plus the
// client_credentials/refresh_token grant handlers and bearer-verification
// middleware built on top of it.
package oauth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/rechat/reso-odata/internal/platform/database"
)

// Grant is a stored token's resolved identity: who it was issued to and
// when it expires.
type Grant struct {
	ClientID  string
	ExpiresAt time.Time
}

// Store persists access and refresh tokens in Postgres, per spec.md §6's
// oauth_tokens/oauth_refresh_tokens schema.
type Store struct {
	db database.DB
}

func NewStore(db database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, token, clientID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO oauth_tokens (access_token, client_id, expires_at, created_at) VALUES ($1, $2, $3, now())`,
		token, clientID, expiresAt)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to persist access token")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (*Grant, error) {
	var g Grant
	err := s.db.GetContext(ctx, &g,
		`SELECT client_id AS "ClientID", expires_at AS "ExpiresAt" FROM oauth_tokens WHERE access_token = $1`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up access token")
	}
	return &g, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE access_token = $1`, token)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete access token")
	}
	return nil
}

func (s *Store) SaveRefresh(ctx context.Context, token, clientID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO oauth_refresh_tokens (refresh_token, client_id, expires_at, created_at) VALUES ($1, $2, $3, now())`,
		token, clientID, expiresAt)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to persist refresh token")
	}
	return nil
}

func (s *Store) GetRefresh(ctx context.Context, token string) (*Grant, error) {
	var g Grant
	err := s.db.GetContext(ctx, &g,
		`SELECT client_id AS "ClientID", expires_at AS "ExpiresAt" FROM oauth_refresh_tokens WHERE refresh_token = $1`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up refresh token")
	}
	return &g, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM oauth_refresh_tokens WHERE refresh_token = $1`, token)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete refresh token")
	}
	return nil
}

// Cleanup purges expired rows from both tables, per spec.md §3.4 invariant 5
// and §8's "token cleanup removes exactly rows whose expires_at < now".
func (s *Store) Cleanup(ctx context.Context) (int64, int64, error) {
	accessRes, err := s.db.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to clean up access tokens")
	}
	refreshRes, err := s.db.ExecContext(ctx, `DELETE FROM oauth_refresh_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to clean up refresh tokens")
	}
	accessN, _ := accessRes.RowsAffected()
	refreshN, _ := refreshRes.RowsAffected()
	return accessN, refreshN, nil
}
