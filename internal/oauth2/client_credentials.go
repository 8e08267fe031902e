package oauth2

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// ClientCredentialsDeps contains dependencies for the handler.
type ClientCredentialsDeps struct {
	Issuer    *jwtx.Issuer
	Publisher audit.Publisher
}

// ClientCredentialsHandler handles machine-to-machine token issuance.
// The client is the principal (sub == aud == client_id) and no refresh
// token is issued: the client re-authenticates on every request.
type ClientCredentialsHandler struct {
	deps ClientCredentialsDeps
}

// NewClientCredentialsHandler builds the handler.
func NewClientCredentialsHandler(d ClientCredentialsDeps) *ClientCredentialsHandler {
	return &ClientCredentialsHandler{deps: d}
}

// Supports implements GrantHandler.
func (h *ClientCredentialsHandler) Supports(grantType string) bool {
	return grantType == GrantClientCredentials
}

// Handle implements GrantHandler.
func (h *ClientCredentialsHandler) Handle(ctx context.Context, req *Request, client *repository.Client) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.grant.clientcreds"), logger.ClientID(client.ClientID))

	if !client.IsConfidential() {
		log.Warn("client_credentials requires confidential client")
		return nil, ErrUnauthorizedClient("client_credentials requires a confidential client")
	}

	scopeParam, ok := req.String("scope")
	if req.Has("scope") && !ok {
		return nil, ErrInvalidRequest("scope must be a string")
	}
	scopes := strings.Fields(scopeParam)
	for _, s := range scopes {
		if !client.AllowsScope(s) {
			log.Warn("scope not allowed", logger.Scope(s))
			return nil, ErrInvalidScope("scope not allowed: " + s)
		}
	}
	scope := strings.Join(scopes, " ")

	jti := uuid.NewString()
	access, exp, err := h.deps.Issuer.Issue(ctx, jwtx.Payload{
		Subject:  client.ClientID,
		Audience: client.ClientID,
		Scope:    scope,
		JTI:      jti,
	})
	if err != nil {
		log.Error("issue access token", logger.Err(err))
		return nil, ErrServerError()
	}

	// Convention for this grant: the client acts as the user.
	h.deps.Publisher.AccessTokenIssued(ctx, audit.AccessTokenIssued{
		UserID:    client.ClientID,
		ClientID:  client.ClientID,
		GrantType: GrantClientCredentials,
		Scopes:    scopes,
		JTI:       jti,
	})

	log.Info("client_credentials token issued", logger.JTI(jti), logger.Scope(scope))

	return &TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
		Scope:       scope,
	}, nil
}
