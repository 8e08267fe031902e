package oauth2

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/security/pkce"
	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
)

// AuthorizationCodeDeps contains dependencies for the handler.
type AuthorizationCodeDeps struct {
	Codes         repository.AuthorizationCodeRepository
	RefreshTokens repository.RefreshTokenRepository
	Hasher        *tokens.Hasher
	Issuer        *jwtx.Issuer
	Publisher     audit.Publisher
	Audit         audit.Sink
	RefreshTTL    time.Duration
}

// AuthorizationCodeHandler exchanges a single-use authorization code for
// an access token plus a rotating refresh token. This is the handler
// where the consume step must be atomic: two concurrent exchanges of the
// same code end with exactly one success.
type AuthorizationCodeHandler struct {
	deps AuthorizationCodeDeps
}

// NewAuthorizationCodeHandler builds the handler.
func NewAuthorizationCodeHandler(d AuthorizationCodeDeps) *AuthorizationCodeHandler {
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 30 * 24 * time.Hour
	}
	return &AuthorizationCodeHandler{deps: d}
}

// Supports implements GrantHandler.
func (h *AuthorizationCodeHandler) Supports(grantType string) bool {
	return grantType == GrantAuthorizationCode
}

// Handle implements GrantHandler.
func (h *AuthorizationCodeHandler) Handle(ctx context.Context, req *Request, client *repository.Client) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.grant.authcode"), logger.ClientID(client.ClientID))

	code, ok := req.String("code")
	if !ok || code == "" {
		return nil, ErrInvalidRequest("code is required")
	}
	redirectURI, ok := req.String("redirect_uri")
	if !ok || redirectURI == "" {
		return nil, ErrInvalidRequest("redirect_uri is required")
	}
	verifier, verifierOK := req.String("code_verifier")
	if req.Has("code_verifier") && !verifierOK {
		return nil, ErrInvalidRequest("code_verifier must be a string")
	}

	// 1. Lookup by hash; the plaintext code never touches storage.
	codeHash, err := h.deps.Hasher.Hash(code)
	if err != nil {
		log.Error("hash authorization code", logger.Err(err))
		return nil, ErrServerError()
	}
	ac, err := h.deps.Codes.GetByHash(ctx, codeHash)
	if err != nil {
		if repository.IsNotFound(err) {
			h.recordFailure(ctx, req, client, "", audit.EventInvalidGrant, audit.LevelWarning, "authorization code not found")
			return nil, ErrInvalidGrant("invalid authorization code")
		}
		log.Error("authorization code lookup failed", logger.Err(err))
		return nil, ErrServerError()
	}

	// 2. Validate expiry, client binding and redirect binding. A client
	// or redirect mismatch on an otherwise valid code smells like code
	// theft, so those escalate to suspicious_activity.
	if ac.IsExpired(time.Now()) {
		h.recordFailure(ctx, req, client, ac.UserID, audit.EventInvalidGrant, audit.LevelWarning, "authorization code expired")
		return nil, ErrInvalidGrant("authorization code expired")
	}
	if ac.ClientID != client.ClientID {
		h.recordFailure(ctx, req, client, ac.UserID, audit.EventSuspiciousActivity, audit.LevelAlert, "authorization code client mismatch")
		return nil, ErrInvalidGrant("invalid authorization code")
	}
	if ac.RedirectURI != redirectURI {
		h.recordFailure(ctx, req, client, ac.UserID, audit.EventSuspiciousActivity, audit.LevelAlert, "redirect_uri mismatch")
		return nil, ErrInvalidGrant("redirect_uri mismatch")
	}

	// 3. PKCE is mandatory once a challenge was recorded.
	if ac.HasChallenge() {
		if verifier == "" {
			h.recordFailure(ctx, req, client, ac.UserID, audit.EventInvalidGrant, audit.LevelWarning, "code_verifier missing")
			return nil, ErrInvalidGrant("code_verifier required")
		}
		method := pkce.MethodS256
		if ac.CodeChallengeMethod != nil && *ac.CodeChallengeMethod != "" {
			method = *ac.CodeChallengeMethod
		}
		if !pkce.Verify(verifier, *ac.CodeChallenge, method) {
			h.recordFailure(ctx, req, client, ac.UserID, audit.EventInvalidGrant, audit.LevelWarning, "PKCE verification failed")
			return nil, ErrInvalidGrant("PKCE verification failed")
		}
	} else if client.PKCERequired {
		// Provisioning marked the client PKCE-only but the authorize
		// endpoint stored no challenge: never exchangeable.
		h.recordFailure(ctx, req, client, ac.UserID, audit.EventSuspiciousActivity, audit.LevelAlert, "code without challenge for PKCE-required client")
		return nil, ErrInvalidGrant("invalid authorization code")
	}

	// 4. Atomic consumption. The storage layer guarantees exactly one
	// winner; a loser observing ErrAlreadyConsumed is a replay.
	if err := h.deps.Codes.Consume(ctx, codeHash); err != nil {
		if errors.Is(err, repository.ErrAlreadyConsumed) || repository.IsNotFound(err) {
			h.recordFailure(ctx, req, client, ac.UserID, audit.EventSuspiciousActivity, audit.LevelAlert, "authorization code replay")
			return nil, ErrInvalidGrant("authorization code already used")
		}
		log.Error("consume authorization code", logger.Err(err))
		return nil, ErrServerError()
	}

	// 5. Mint tokens. One jti per issuance, shared with the events.
	jti := uuid.NewString()
	scope := strings.Join(ac.Scopes, " ")

	access, exp, err := h.deps.Issuer.Issue(ctx, jwtx.Payload{
		Subject:  ac.UserID,
		Audience: client.ClientID,
		Scope:    scope,
		JTI:      jti,
	})
	if err != nil {
		log.Error("issue access token", logger.Err(err))
		return nil, ErrServerError()
	}

	rawRefresh, refreshID, err := h.mintRefreshToken(ctx, client.ClientID, ac.UserID, ac.Scopes)
	if err != nil {
		log.Error("mint refresh token", logger.Err(err))
		return nil, ErrServerError()
	}

	h.deps.Publisher.AccessTokenIssued(ctx, audit.AccessTokenIssued{
		UserID:    ac.UserID,
		ClientID:  client.ClientID,
		GrantType: GrantAuthorizationCode,
		Scopes:    ac.Scopes,
		JTI:       jti,
	})
	h.deps.Publisher.RefreshTokenIssued(ctx, audit.RefreshTokenIssued{
		UserID:   ac.UserID,
		ClientID: client.ClientID,
		TokenID:  refreshID,
		Scopes:   ac.Scopes,
	})

	log.Info("authorization_code exchanged", logger.UserID(ac.UserID), logger.JTI(jti))

	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		RefreshToken: rawRefresh,
		Scope:        scope,
	}, nil
}

// mintRefreshToken generates, hashes and persists a new opaque refresh
// token. The plaintext is returned once and never stored.
func (h *AuthorizationCodeHandler) mintRefreshToken(ctx context.Context, clientID, userID string, scopes []string) (string, string, error) {
	raw, err := tokens.GenerateOpaqueToken()
	if err != nil {
		return "", "", err
	}
	hash, err := h.deps.Hasher.Hash(raw)
	if err != nil {
		return "", "", err
	}
	id, err := h.deps.RefreshTokens.Create(ctx, repository.CreateRefreshTokenInput{
		TokenHash: hash,
		ClientID:  clientID,
		UserID:    userID,
		Scopes:    scopes,
		TTL:       h.deps.RefreshTTL,
	})
	if err != nil {
		return "", "", err
	}
	return raw, id, nil
}

// recordFailure writes the security audit record synchronously, before
// the protocol error propagates. Part of the security contract.
func (h *AuthorizationCodeHandler) recordFailure(ctx context.Context, req *Request, client *repository.Client, userID, eventType, level, reason string) {
	h.deps.Audit.Record(ctx, audit.Event{
		Type:      eventType,
		Level:     level,
		Message:   reason,
		UserID:    userID,
		ClientID:  client.ClientID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Context:   map[string]any{"grant_type": GrantAuthorizationCode},
	})
}
