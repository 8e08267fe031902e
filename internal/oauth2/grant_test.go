package oauth2_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
)

func TestDispatch_MissingGrantType(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "web-app", "s3cret")

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(nil), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeInvalidRequest))
}

func TestDispatch_UnsupportedGrantType(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "web-app", "s3cret")

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": "urn:ietf:params:oauth:grant-type:device_code",
	}), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeUnsupportedGrantType))
}

func TestDispatch_UnknownGrantBeatsAllowList(t *testing.T) {
	// Un grant_type que el servidor no implementa es unsupported_grant_type
	// incluso cuando el allow-list del cliente tampoco lo incluye; la
	// autorización del cliente se evalúa después del reconocimiento.
	f := newFixture(t)
	client := f.seedConfidential(t, "m2m-only", "s3cret", func(c *repository.Client) {
		c.GrantTypes = []string{oauth2.GrantClientCredentials}
	})

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": "urn:ietf:params:oauth:grant-type:device_code",
	}), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeUnsupportedGrantType))
}

func TestDispatch_GrantNotAllowedForClient(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "m2m-only", "s3cret", func(c *repository.Client) {
		c.GrantTypes = []string{oauth2.GrantClientCredentials}
	})

	_, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantAuthorizationCode,
		"code":       "x",
	}), client)
	require.True(t, oauth2.IsCode(err, oauth2.CodeUnauthorizedClient))
}

func TestDispatch_EmptyGrantListAllowsAll(t *testing.T) {
	f := newFixture(t)
	client := f.seedConfidential(t, "legacy", "s3cret")
	require.Empty(t, client.GrantTypes)

	resp, err := f.dispatcher.Dispatch(context.Background(), tokenRequest(map[string]string{
		"grant_type": oauth2.GrantClientCredentials,
	}), client)
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
}
