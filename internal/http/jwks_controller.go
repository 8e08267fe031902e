package http

import (
	"net/http"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// JWKSController expone las claves públicas activas para que los
// resource servers verifiquen firmas por kid.
type JWKSController struct {
	Keys repository.CryptoKeyRepository
}

func (c *JWKSController) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := jwtx.JWKSJSON(r.Context(), c.Keys)
	if err != nil {
		logger.From(r.Context()).Error("serialize jwks", logger.Err(err))
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(body)
}
