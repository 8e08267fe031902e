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
	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
)

// RefreshTokenDeps contains dependencies for the handler.
type RefreshTokenDeps struct {
	RefreshTokens repository.RefreshTokenRepository
	Hasher        *tokens.Hasher
	Issuer        *jwtx.Issuer
	Publisher     audit.Publisher
	Audit         audit.Sink
	RefreshTTL    time.Duration
}

// RefreshTokenHandler rotates refresh tokens: every exchange revokes the
// presented token and mints a replacement, so a leaked token is burned
// the moment its legitimate owner uses it.
type RefreshTokenHandler struct {
	deps RefreshTokenDeps
}

// NewRefreshTokenHandler builds the handler.
func NewRefreshTokenHandler(d RefreshTokenDeps) *RefreshTokenHandler {
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 30 * 24 * time.Hour
	}
	return &RefreshTokenHandler{deps: d}
}

// Supports implements GrantHandler.
func (h *RefreshTokenHandler) Supports(grantType string) bool {
	return grantType == GrantRefreshToken
}

// Handle implements GrantHandler.
func (h *RefreshTokenHandler) Handle(ctx context.Context, req *Request, client *repository.Client) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.grant.refresh"), logger.ClientID(client.ClientID))

	raw, ok := req.String("refresh_token")
	if !ok || raw == "" {
		return nil, ErrInvalidRequest("refresh_token is required")
	}
	scopeParam, scopeOK := req.String("scope")
	if req.Has("scope") && !scopeOK {
		return nil, ErrInvalidRequest("scope must be a string")
	}

	hash, err := h.deps.Hasher.Hash(raw)
	if err != nil {
		log.Error("hash refresh token", logger.Err(err))
		return nil, ErrServerError()
	}
	rt, err := h.deps.RefreshTokens.GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			h.recordFailure(ctx, req, client, "", audit.EventInvalidGrant, audit.LevelWarning, "refresh token not found")
			return nil, ErrInvalidGrant("invalid refresh token")
		}
		log.Error("refresh token lookup failed", logger.Err(err))
		return nil, ErrServerError()
	}

	// A valid token presented by the wrong client is a theft indicator.
	if rt.ClientID != client.ClientID {
		h.recordFailure(ctx, req, client, rt.UserID, audit.EventSuspiciousActivity, audit.LevelAlert, "refresh token client mismatch")
		return nil, ErrInvalidGrant("invalid refresh token")
	}
	if !rt.IsValid(time.Now()) {
		h.recordFailure(ctx, req, client, rt.UserID, audit.EventInvalidGrant, audit.LevelWarning, "refresh token expired or revoked")
		return nil, ErrInvalidGrant("refresh token expired or revoked")
	}

	// Scope narrowing is allowed; widening past the original grant is not.
	scopes := rt.Scopes
	if scopeParam != "" {
		requested := strings.Fields(scopeParam)
		for _, s := range requested {
			if !contains(rt.Scopes, s) {
				log.Warn("requested scope exceeds grant", logger.Scope(s))
				return nil, ErrInvalidScope("scope exceeds original grant: " + s)
			}
		}
		scopes = requested
	}
	scope := strings.Join(scopes, " ")

	jti := uuid.NewString()
	access, exp, err := h.deps.Issuer.Issue(ctx, jwtx.Payload{
		Subject:  rt.UserID,
		Audience: client.ClientID,
		Scope:    scope,
		JTI:      jti,
	})
	if err != nil {
		log.Error("issue access token", logger.Err(err))
		return nil, ErrServerError()
	}

	// Rotation: revoke the presented token, then mint its successor.
	if err := h.deps.RefreshTokens.Revoke(ctx, rt.ID); err != nil {
		log.Error("revoke rotated refresh token", logger.Err(err))
		return nil, ErrServerError()
	}
	newRaw, err := tokens.GenerateOpaqueToken()
	if err != nil {
		log.Error("generate refresh token", logger.Err(err))
		return nil, ErrServerError()
	}
	newHash, err := h.deps.Hasher.Hash(newRaw)
	if err != nil {
		log.Error("hash refresh token", logger.Err(err))
		return nil, ErrServerError()
	}
	newID, err := h.deps.RefreshTokens.Create(ctx, repository.CreateRefreshTokenInput{
		TokenHash: newHash,
		ClientID:  client.ClientID,
		UserID:    rt.UserID,
		Scopes:    scopes,
		TTL:       h.deps.RefreshTTL,
	})
	if err != nil {
		log.Error("store refresh token", logger.Err(err))
		return nil, ErrServerError()
	}

	h.deps.Publisher.AccessTokenIssued(ctx, audit.AccessTokenIssued{
		UserID:    rt.UserID,
		ClientID:  client.ClientID,
		GrantType: GrantRefreshToken,
		Scopes:    scopes,
		JTI:       jti,
	})
	h.deps.Publisher.RefreshTokenIssued(ctx, audit.RefreshTokenIssued{
		UserID:   rt.UserID,
		ClientID: client.ClientID,
		TokenID:  newID,
		Scopes:   scopes,
	})

	log.Info("refresh_token exchanged", logger.UserID(rt.UserID), logger.JTI(jti))

	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		RefreshToken: newRaw,
		Scope:        scope,
	}, nil
}

func (h *RefreshTokenHandler) recordFailure(ctx context.Context, req *Request, client *repository.Client, userID, eventType, level, reason string) {
	h.deps.Audit.Record(ctx, audit.Event{
		Type:      eventType,
		Level:     level,
		Message:   reason,
		UserID:    userID,
		ClientID:  client.ClientID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Context:   map[string]any{"grant_type": GrantRefreshToken},
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
