package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueClientCredentials(t *testing.T) {
	t.Run("should reject a client secret that does not match the configured client", func(t *testing.T) {
		iss := NewIssuer(nil, "client-a", "secret-a", time.Hour, 24*time.Hour)

		resp, grantErr := iss.IssueClientCredentials(context.Background(), "client-a", "wrong-secret")
		assert.Nil(t, resp)
		assert.Equal(t, "invalid_client", grantErr.Slug)
	})

	t.Run("should reject an unknown client id", func(t *testing.T) {
		iss := NewIssuer(nil, "client-a", "secret-a", time.Hour, 24*time.Hour)

		resp, grantErr := iss.IssueClientCredentials(context.Background(), "client-b", "secret-a")
		assert.Nil(t, resp)
		assert.Equal(t, "invalid_client", grantErr.Slug)
	})
}

type fakeTokenStore struct {
	refresh        map[string]*Grant
	savedAccess    []string
	deletedRefresh []string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{refresh: map[string]*Grant{}}
}

func (f *fakeTokenStore) Save(ctx context.Context, token, clientID string, expiresAt time.Time) error {
	f.savedAccess = append(f.savedAccess, token)
	return nil
}

func (f *fakeTokenStore) SaveRefresh(ctx context.Context, token, clientID string, expiresAt time.Time) error {
	f.refresh[token] = &Grant{ClientID: clientID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) GetRefresh(ctx context.Context, token string) (*Grant, error) {
	return f.refresh[token], nil
}

func (f *fakeTokenStore) DeleteRefresh(ctx context.Context, token string) error {
	f.deletedRefresh = append(f.deletedRefresh, token)
	delete(f.refresh, token)
	return nil
}

func TestRefreshAccessToken(t *testing.T) {
	t.Run("should reuse the presented refresh token rather than issuing a new one", func(t *testing.T) {
		store := newFakeTokenStore()
		store.refresh["rt-1"] = &Grant{ClientID: "client-a", ExpiresAt: time.Now().Add(time.Hour)}
		iss := NewIssuer(store, "client-a", "secret-a", time.Hour, 24*time.Hour)

		resp, grantErr := iss.RefreshAccessToken(context.Background(), "rt-1")
		assert.Nil(t, grantErr)
		assert.Equal(t, "rt-1", resp.RefreshToken)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Empty(t, store.deletedRefresh)
		assert.Len(t, store.savedAccess, 1)
	})

	t.Run("should reject an unknown refresh token", func(t *testing.T) {
		store := newFakeTokenStore()
		iss := NewIssuer(store, "client-a", "secret-a", time.Hour, 24*time.Hour)

		resp, grantErr := iss.RefreshAccessToken(context.Background(), "missing")
		assert.Nil(t, resp)
		assert.Equal(t, "invalid_grant", grantErr.Slug)
	})

	t.Run("should reject and delete an expired refresh token", func(t *testing.T) {
		store := newFakeTokenStore()
		store.refresh["rt-2"] = &Grant{ClientID: "client-a", ExpiresAt: time.Now().Add(-time.Hour)}
		iss := NewIssuer(store, "client-a", "secret-a", time.Hour, 24*time.Hour)

		resp, grantErr := iss.RefreshAccessToken(context.Background(), "rt-2")
		assert.Nil(t, resp)
		assert.Equal(t, "invalid_grant", grantErr.Slug)
		assert.Equal(t, []string{"rt-2"}, store.deletedRefresh)
	})
}

func TestGrantErrorJSON(t *testing.T) {
	t.Run("should render only the error slug when there is no description", func(t *testing.T) {
		err := &GrantError{Slug: "invalid_grant"}
		assert.Equal(t, map[string]string{"error": "invalid_grant"}, err.JSON())
	})

	t.Run("should include the description when present", func(t *testing.T) {
		err := &GrantError{Slug: "unsupported_grant_type", Description: "only client_credentials and refresh_token are supported"}
		assert.Equal(t, map[string]string{
			"error":             "unsupported_grant_type",
			"error_description": "only client_credentials and refresh_token are supported",
		}, err.JSON())
	})

	t.Run("should satisfy the error interface with the slug as its message", func(t *testing.T) {
		var err error = &GrantError{Slug: "invalid_client"}
		assert.Equal(t, "invalid_client", err.Error())
	})
}
