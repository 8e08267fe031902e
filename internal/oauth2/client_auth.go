package oauth2

import (
	"context"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// dummyBcryptHash is a well-formed bcrypt hash of random material.
// When a client_id does not exist we still run a bcrypt compare against
// this hash so the response time does not reveal whether the client
// exists. Do not remove.
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticator resolves and authenticates the calling client before a
// grant is processed. Mechanisms are tried in order, first success wins:
// HTTP Basic, POST body credentials, public client_id.
type Authenticator struct {
	Clients repository.ClientRepository
	Audit   audit.Sink
}

// NewAuthenticator builds the client authenticator.
func NewAuthenticator(clients repository.ClientRepository, sink audit.Sink) *Authenticator {
	return &Authenticator{Clients: clients, Audit: sink}
}

// Authenticate returns the authenticated client or invalid_client.
func (a *Authenticator) Authenticate(ctx context.Context, req *Request) (*repository.Client, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.client_auth"))

	// 1. HTTP Basic. Malformed header falls through, it is not a hard
	// failure yet: the body may still carry credentials.
	if id, secret, ok := parseBasicAuth(req.AuthorizationHeader); ok {
		return a.verify(ctx, req, id, secret)
	}

	// 2. POST body client_id + client_secret.
	id, idOK := req.String("client_id")
	secret, secretOK := req.String("client_secret")
	if idOK && id != "" && secretOK && secret != "" {
		return a.verify(ctx, req, id, secret)
	}

	// 3. Public client: client_id alone.
	if idOK && id != "" {
		client, err := a.lookup(ctx, req, id)
		if err != nil {
			return nil, err
		}
		if client.IsConfidential() {
			log.Warn("confidential client attempted public authentication", logger.ClientID(id))
			a.recordAuthFailure(ctx, req, id, "confidential client without secret")
			return nil, ErrInvalidClient("client authentication required")
		}
		return client, nil
	}

	log.Warn("no client authentication mechanism succeeded")
	return nil, ErrInvalidClient("client authentication failed")
}

// verify authenticates an (id, secret) pair.
func (a *Authenticator) verify(ctx context.Context, req *Request, id, secret string) (*repository.Client, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.client_auth"))

	client, err := a.Clients.GetByClientID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			// Timing defense: burn a bcrypt compare anyway so unknown
			// client_ids cost the same as wrong secrets.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyBcryptHash), []byte(secret))
			a.recordAuthFailure(ctx, req, id, "unknown client")
			return nil, ErrInvalidClient("client authentication failed")
		}
		log.Error("client lookup failed", logger.Err(err))
		return nil, ErrServerError()
	}

	if client.IsConfidential() {
		if client.SecretHash == nil {
			// Invariant broken at provisioning time; treat as server fault.
			log.Error("confidential client without secret hash", logger.ClientID(id))
			return nil, ErrServerError()
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*client.SecretHash), []byte(secret)); err != nil {
			a.recordAuthFailure(ctx, req, id, "secret mismatch")
			return nil, ErrInvalidClient("client authentication failed")
		}
		return client, nil
	}

	// Public client sent a secret: not required, tolerated, logged.
	log.Info("public client sent a client_secret", logger.ClientID(id))
	return client, nil
}

func (a *Authenticator) lookup(ctx context.Context, req *Request, id string) (*repository.Client, error) {
	client, err := a.Clients.GetByClientID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			a.recordAuthFailure(ctx, req, id, "unknown client")
			return nil, ErrInvalidClient("client authentication failed")
		}
		logger.From(ctx).Error("client lookup failed", logger.Err(err))
		return nil, ErrServerError()
	}
	return client, nil
}

func (a *Authenticator) recordAuthFailure(ctx context.Context, req *Request, clientID, reason string) {
	a.Audit.Record(ctx, audit.Event{
		Type:      audit.EventClientAuthFailed,
		Level:     audit.LevelWarning,
		Message:   "client authentication failed",
		ClientID:  clientID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Context:   map[string]any{"reason": reason},
	})
}

// parseBasicAuth decodes "Basic base64(id:secret)". Any malformation
// (bad base64, missing colon) returns ok=false.
func parseBasicAuth(header string) (id, secret string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	idx := strings.IndexByte(string(decoded), ':')
	if idx < 0 {
		return "", "", false
	}
	id, secret = string(decoded[:idx]), string(decoded[idx+1:])
	if id == "" {
		return "", "", false
	}
	return id, secret, true
}
