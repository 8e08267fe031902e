package oauth2

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
)

// RevokerDeps contains dependencies for the revocation service.
type RevokerDeps struct {
	RefreshTokens repository.RefreshTokenRepository
	Blacklist     repository.BlacklistRepository
	Hasher        *tokens.Hasher
	Issuer        *jwtx.Issuer
}

// Revoker implements RFC 7009 token revocation. Refresh tokens are
// revoked in place; access tokens are blacklisted by jti until their
// own exp, which resource servers consult during validation.
type Revoker struct {
	deps RevokerDeps
}

// NewRevoker builds the revocation service.
func NewRevoker(d RevokerDeps) *Revoker {
	return &Revoker{deps: d}
}

// Revoke invalidates the presented token on behalf of the authenticated
// client. Per RFC 7009 an unknown or already-invalid token is NOT an
// error: the endpoint answers 200 either way so callers cannot probe
// token validity. Only infrastructure failures surface.
func (r *Revoker) Revoke(ctx context.Context, req *Request, client *repository.Client, sink audit.Sink) error {
	log := logger.From(ctx).With(logger.Layer("core"), logger.Op("oauth2.revoke"), logger.ClientID(client.ClientID))

	token, ok := req.String("token")
	if !ok || token == "" {
		return ErrInvalidRequest("token is required")
	}
	hint, _ := req.String("token_type_hint")

	// The hint only orders the attempts; a wrong hint must still work
	// (RFC 7009 §2.1 extends the search across token types).
	attempts := []func(context.Context, string, *repository.Client, audit.Sink) (bool, error){
		r.revokeRefresh, r.revokeAccess,
	}
	if hint == "access_token" {
		attempts[0], attempts[1] = attempts[1], attempts[0]
	}
	for _, attempt := range attempts {
		done, err := attempt(ctx, token, client, sink)
		if err != nil {
			log.Error("revoke token", logger.Err(err))
			return ErrServerError()
		}
		if done {
			return nil
		}
	}
	return nil
}

// revokeRefresh tries the opaque-token path. Returns done=true when the
// token matched a refresh token of this client.
func (r *Revoker) revokeRefresh(ctx context.Context, token string, client *repository.Client, sink audit.Sink) (bool, error) {
	hash, err := r.deps.Hasher.Hash(token)
	if err != nil {
		return false, err
	}
	rt, err := r.deps.RefreshTokens.GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if rt.ClientID != client.ClientID {
		// Someone revoking another client's token: swallow per RFC,
		// but leave an audit trail.
		sink.Record(ctx, audit.Event{
			Type:     audit.EventSuspiciousActivity,
			Level:    audit.LevelAlert,
			Message:  "revocation attempt for foreign refresh token",
			UserID:   rt.UserID,
			ClientID: client.ClientID,
		})
		return true, nil
	}
	if err := r.deps.RefreshTokens.Revoke(ctx, rt.ID); err != nil {
		return false, err
	}
	sink.Record(ctx, audit.Event{
		Type:     audit.EventTokenRevoked,
		Level:    audit.LevelInfo,
		Message:  "refresh token revoked",
		UserID:   rt.UserID,
		ClientID: client.ClientID,
		Context:  map[string]any{"token_id": rt.ID},
	})
	return true, nil
}

// revokeAccess parses the token as one of our JWTs and blacklists its
// jti. Returns done=true when the token was a JWT this server issued,
// even when it was foreign and got swallowed per RFC.
func (r *Revoker) revokeAccess(ctx context.Context, token string, client *repository.Client, sink audit.Sink) (bool, error) {
	claims, err := r.deps.Issuer.Parse(ctx, token)
	if err != nil {
		return false, nil // not one of ours, or already expired
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return true, nil
	}
	aud, _ := claims["aud"].(string)
	if aud != client.ClientID {
		sink.Record(ctx, audit.Event{
			Type:     audit.EventSuspiciousActivity,
			Level:    audit.LevelAlert,
			Message:  "revocation attempt for foreign access token",
			ClientID: client.ClientID,
			Context:  map[string]any{"jti": jti},
		})
		return true, nil
	}

	exp := time.Now().Add(time.Hour)
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	reason := "revoked via /oauth/revoke"
	entry := &repository.BlacklistEntry{
		ID:        uuid.NewString(),
		JTI:       jti,
		Reason:    &reason,
		ExpiresAt: exp,
		RevokedAt: time.Now().UTC(),
	}
	if err := r.deps.Blacklist.Add(ctx, entry); err != nil {
		return false, err
	}
	sink.Record(ctx, audit.Event{
		Type:     audit.EventTokenRevoked,
		Level:    audit.LevelInfo,
		Message:  "access token blacklisted",
		ClientID: client.ClientID,
		Context:  map[string]any{"jti": jti},
	})
	return true, nil
}
