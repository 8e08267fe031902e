package http

import (
	"net/http"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
)

// RevokeController maneja POST /oauth/revoke (RFC 7009).
type RevokeController struct {
	Auth    *oauth2.Authenticator
	Revoker *oauth2.Revoker
	Audit   audit.Sink
}

func (c *RevokeController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, oauth2.ErrInvalidRequest("malformed request body"))
		return
	}
	req := requestFromHTTP(r)

	client, err := c.Auth.Authenticate(ctx, req)
	if err != nil {
		writeError(w, oauth2.AsError(err))
		return
	}

	if err := c.Revoker.Revoke(ctx, req, client, c.Audit); err != nil {
		writeError(w, oauth2.AsError(err))
		return
	}
	// RFC 7009: 200 sin body, incluso si el token no existía
	w.WriteHeader(http.StatusOK)
}
