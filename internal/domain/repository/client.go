package repository

import (
	"context"
	"time"
)

const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Client representa un cliente OAuth2 registrado.
type Client struct {
	ID               string
	ClientID         string // identificador público
	Name             string
	Type             string  // "public" | "confidential"
	SecretHash       *string // bcrypt; nil para clients públicos
	RedirectURI      string
	GrantTypes       []string // grant types permitidos ("authorization_code", ...)
	Scopes           []string // scopes permitidos
	PKCERequired     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsConfidential indica si el client tiene secret propio.
// Invariante: confidential <=> SecretHash != nil.
func (c *Client) IsConfidential() bool {
	return c.Type == ClientTypeConfidential
}

// AllowsGrantType verifica si el grant type está permitido para el client.
// Lista vacía = permitir todos (compat con clients provisionados sin lista).
func (c *Client) AllowsGrantType(grantType string) bool {
	if len(c.GrantTypes) == 0 {
		return true
	}
	for _, g := range c.GrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}

// AllowsScope verifica si un scope está dentro de los permitidos.
func (c *Client) AllowsScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ClientRepository define operaciones de lectura sobre clients OAuth2.
// El aprovisionamiento de clients vive fuera del core; acá es read-only.
type ClientRepository interface {
	// Get obtiene un client por su UUID interno.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, id string) (*Client, error)

	// GetByClientID obtiene un client por su client_id público.
	// Retorna ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)
}
