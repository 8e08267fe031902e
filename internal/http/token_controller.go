package http

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/tokensmith/internal/oauth2"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// TokenController maneja POST /oauth/token.
type TokenController struct {
	Auth       *oauth2.Authenticator
	Dispatcher *oauth2.Dispatcher
}

// Handle parsea el form, autentica el client y despacha el grant.
func (c *TokenController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, oauth2.ErrInvalidRequest("malformed request body"))
		return
	}
	req := requestFromHTTP(r)
	grantType, _ := req.String("grant_type")

	client, err := c.Auth.Authenticate(ctx, req)
	if err != nil {
		countTokenIssued(grantType, "invalid_client")
		writeError(w, oauth2.AsError(err))
		return
	}

	resp, err := c.Dispatcher.Dispatch(ctx, req, client)
	if err != nil {
		oe := oauth2.AsError(err)
		countTokenIssued(grantType, oe.Code)
		writeError(w, oe)
		return
	}

	countTokenIssued(grantType, "ok")
	writeTokenResponse(w, resp)
}

// requestFromHTTP convierte el request HTTP al Request del core.
func requestFromHTTP(r *http.Request) *oauth2.Request {
	params := make(map[string]any, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return &oauth2.Request{
		Params:              params,
		AuthorizationHeader: r.Header.Get("Authorization"),
		IPAddress:           r.RemoteAddr,
		UserAgent:           r.UserAgent(),
	}
}

// writeTokenResponse serializa la respuesta, mezclando los campos
// extra específicos del grant en el objeto JSON.
func writeTokenResponse(w http.ResponseWriter, resp *oauth2.TokenResponse) {
	body := map[string]any{
		"access_token": resp.AccessToken,
		"token_type":   resp.TokenType,
		"expires_in":   resp.ExpiresIn,
	}
	if resp.RefreshToken != "" {
		body["refresh_token"] = resp.RefreshToken
	}
	if resp.Scope != "" {
		body["scope"] = resp.Scope
	}
	for k, v := range resp.Extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L().Error("encode token response", logger.Err(err))
	}
}

// writeError serializa el error con el shape RFC 6749 §5.2.
func writeError(w http.ResponseWriter, oe *oauth2.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if oe.Code == oauth2.CodeInvalidClient {
		// RFC 6749 §5.2: 401 con challenge cuando falla la autenticación
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
	}
	w.WriteHeader(oe.Status)
	_ = json.NewEncoder(w).Encode(oe)
}
