package oauth2_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
)

func TestClientCredentials_HappyPath(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "batch-job", "s3cret")

	resp, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantClientCredentials,
		"scope":      "api:read openid",
	}), client)
	require.NoError(t, err)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, "api:read openid", resp.Scope)
	require.Empty(t, resp.RefreshToken, "client_credentials must not issue refresh tokens")

	// el client es el principal: sub == aud == client_id
	claims, err := f.issuer.Parse(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, client.ClientID, claims["sub"])
	require.Equal(t, client.ClientID, claims["aud"])

	issued := f.sink.byType(audit.EventAccessTokenIssued)
	require.Len(t, issued, 1)
	require.Equal(t, client.ClientID, issued[0].UserID)
	require.Empty(t, f.sink.byType(audit.EventRefreshTokenIssued))
}

func TestClientCredentials_PublicClientRejected(t *testing.T) {
	f := newFixture(t)
	client := f.seedPublic(t, "mobile-app")

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantClientCredentials,
	}), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeUnauthorizedClient))
}

func TestClientCredentials_ScopeNotAllowed(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "batch-job", "s3cret")

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantClientCredentials,
		"scope":      "admin:everything",
	}), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidScope))
}

func TestClientCredentials_AbsentScopeIsEmpty(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "batch-job", "s3cret")

	resp, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantClientCredentials,
	}), client)
	require.NoError(t, err)
	require.Empty(t, resp.Scope)

	claims, err := f.issuer.Parse(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "", claims["scope"])
}
