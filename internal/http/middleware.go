package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// statusWriter captura el status code para logging y métricas.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger inyecta un logger scoped (request_id, method, path) en
// el contexto y loguea el request al terminar.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()

		l := logger.With(
			logger.RequestID(reqID),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
		ctx := logger.ToContext(r.Context(), l)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		l.Info("request",
			logger.Status(sw.status),
			logger.Duration(time.Since(start)),
			logger.ClientIP(r.RemoteAddr),
		)
	})
}
