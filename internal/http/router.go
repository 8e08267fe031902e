// Package http es la frontera HTTP del servidor: routing, parseo de
// forms y serialización de respuestas/errores RFC 6749. Toda la lógica
// de protocolo vive en internal/oauth2.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
)

// Deps agrupa las dependencias del router.
type Deps struct {
	Authenticator *oauth2.Authenticator
	Dispatcher    *oauth2.Dispatcher
	Revoker       *oauth2.Revoker
	Audit         audit.Sink
	Keys          repository.CryptoKeyRepository
	Issuer        *jwtx.Issuer
}

// NewRouter arma el router chi con middlewares y endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Metrics)

	tc := &TokenController{Auth: d.Authenticator, Dispatcher: d.Dispatcher}
	rc := &RevokeController{Auth: d.Authenticator, Revoker: d.Revoker, Audit: d.Audit}
	jc := &JWKSController{Keys: d.Keys}

	r.Post("/oauth/token", tc.Handle)
	r.Post("/oauth/revoke", rc.Handle)
	r.Get("/.well-known/jwks.json", jc.Handle)
	r.Get("/metrics", MetricsHandler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
