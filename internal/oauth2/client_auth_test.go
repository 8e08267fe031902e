package oauth2_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
)

func basicHeader(id, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))
}

func TestAuthenticate_BasicAuth(t *testing.T) {
	f := newFixture(t)
	f.seedConfidential(t, "web-app", "s3cret")

	req := tokenRequest(nil)
	req.AuthorizationHeader = basicHeader("web-app", "s3cret")

	client, err := f.auth.Authenticate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "web-app", client.ClientID)
	require.True(t, client.IsConfidential())
}

func TestAuthenticate_BodyCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedConfidential(t, "web-app", "s3cret")

	req := tokenRequest(map[string]string{
		"client_id":     "web-app",
		"client_secret": "s3cret",
	})
	client, err := f.auth.Authenticate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "web-app", client.ClientID)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	f := newFixture(t)
	f.seedConfidential(t, "web-app", "s3cret")

	req := tokenRequest(nil)
	req.AuthorizationHeader = basicHeader("web-app", "wrong")

	_, err := f.auth.Authenticate(context.Background(), req)
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidClient))
	require.Len(t, f.sink.byType(audit.EventClientAuthFailed), 1)
}

func TestAuthenticate_UnknownClient(t *testing.T) {
	f := newFixture(t)

	req := tokenRequest(map[string]string{
		"client_id":     "ghost",
		"client_secret": "whatever",
	})
	_, err := f.auth.Authenticate(context.Background(), req)
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidClient))
	require.Len(t, f.sink.byType(audit.EventClientAuthFailed), 1)
}

func TestAuthenticate_PublicClient(t *testing.T) {
	f := newFixture(t)
	f.seedPublic(t, "mobile-app")

	client, err := f.auth.Authenticate(context.Background(), tokenRequest(map[string]string{
		"client_id": "mobile-app",
	}))
	require.NoError(t, err)
	require.False(t, client.IsConfidential())
}

func TestAuthenticate_ConfidentialWithoutSecret(t *testing.T) {
	f := newFixture(t)
	f.seedConfidential(t, "web-app", "s3cret")

	// client_id solo vale para clients públicos
	_, err := f.auth.Authenticate(context.Background(), tokenRequest(map[string]string{
		"client_id": "web-app",
	}))
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidClient))
}

func TestAuthenticate_PublicClientWithSecretTolerated(t *testing.T) {
	f := newFixture(t)
	f.seedPublic(t, "mobile-app")

	client, err := f.auth.Authenticate(context.Background(), tokenRequest(map[string]string{
		"client_id":     "mobile-app",
		"client_secret": "ignored",
	}))
	require.NoError(t, err)
	require.Equal(t, "mobile-app", client.ClientID)
}

func TestAuthenticate_MalformedBasicFallsThroughToBody(t *testing.T) {
	f := newFixture(t)
	f.seedConfidential(t, "web-app", "s3cret")

	req := tokenRequest(map[string]string{
		"client_id":     "web-app",
		"client_secret": "s3cret",
	})
	req.AuthorizationHeader = "Basic %%%not-base64%%%"

	client, err := f.auth.Authenticate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "web-app", client.ClientID)
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Authenticate(context.Background(), tokenRequest(nil))
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidClient))
}
