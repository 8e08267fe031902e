package oauth2

import (
	"context"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// Grant type identifiers.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantClientCredentials = "client_credentials"
	GrantRefreshToken      = "refresh_token"
)

// GrantHandler processes one grant type. Handlers are stateless per
// request; all token lifecycle state lives in the repositories.
type GrantHandler interface {
	// Supports reports whether this handler processes the grant type.
	Supports(grantType string) bool

	// Handle validates the grant-specific parameters and issues tokens.
	Handle(ctx context.Context, req *Request, client *repository.Client) (*TokenResponse, error)
}

// Dispatcher selects the matching handler for a token request. It is a
// plain ordered strategy list registered once in the composition root.
type Dispatcher struct {
	handlers []GrantHandler
}

// NewDispatcher builds the dispatcher with the registered handlers.
func NewDispatcher(handlers ...GrantHandler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Dispatch routes the request to the first handler supporting its
// grant_type. The client must already be authenticated.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, client *repository.Client) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.dispatch"))

	grantType, ok := req.String("grant_type")
	if !ok || grantType == "" {
		return nil, ErrInvalidRequest("grant_type is required")
	}

	// Recognition precedes authorization: un grant_type desconocido es
	// unsupported_grant_type aunque el allow-list del cliente no lo incluya.
	var handler GrantHandler
	for _, h := range d.handlers {
		if h.Supports(grantType) {
			handler = h
			break
		}
	}
	if handler == nil {
		log.Warn("unsupported grant_type", logger.GrantType(grantType))
		return nil, ErrUnsupportedGrantType("unsupported grant_type: " + grantType)
	}

	if !client.AllowsGrantType(grantType) {
		log.Warn("grant_type not allowed for client",
			logger.ClientID(client.ClientID), logger.GrantType(grantType))
		return nil, ErrUnauthorizedClient("client is not allowed to use this grant type")
	}

	return handler.Handle(ctx, req, client)
}
