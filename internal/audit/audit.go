// Package audit registra eventos de seguridad del token endpoint.
//
// El contrato importante: los writes en paths de fallo (replay de code,
// mismatch de client/redirect, PKCE inválido) son SÍNCRONOS y ocurren
// antes de devolver el error: son parte del contrato de seguridad, no
// telemetría best-effort. Un fallo del sink, en cambio, jamás voltea la
// emisión de un token: se traga y se loguea.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// Tipos de evento de auditoría.
const (
	EventAccessTokenIssued  = "access_token_issued"
	EventRefreshTokenIssued = "refresh_token_issued"
	EventTokenRevoked       = "token_revoked"
	EventInvalidGrant       = "invalid_grant"
	EventSuspiciousActivity = "suspicious_activity"
	EventClientAuthFailed   = "client_auth_failed"
)

// Niveles de severidad.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelAlert   = "alert"
)

// Event es un registro de auditoría estructurado.
type Event struct {
	Type      string
	Level     string
	Message   string
	Context   map[string]any
	UserID    string
	ClientID  string
	IPAddress string
	UserAgent string
	At        time.Time
}

// Sink recibe eventos de auditoría. Fire-and-forget desde el punto de
// vista del core: las implementaciones no devuelven error.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// ZapSink escribe los eventos como logs estructurados con zap.
// Implementación por defecto; un deployment puede envolverla con un
// sink que persista a DB o a un SIEM.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink construye el sink sobre el logger singleton.
func NewZapSink() *ZapSink {
	return &ZapSink{log: logger.Named("audit")}
}

// Record escribe el evento. Nunca falla hacia el caller.
func (s *ZapSink) Record(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	fields := []zap.Field{
		zap.String("event_type", e.Type),
		zap.String("audit_level", e.Level),
		zap.Time("at", e.At),
	}
	if e.UserID != "" {
		fields = append(fields, logger.UserID(e.UserID))
	}
	if e.ClientID != "" {
		fields = append(fields, logger.ClientID(e.ClientID))
	}
	if e.IPAddress != "" {
		fields = append(fields, logger.ClientIP(e.IPAddress))
	}
	if e.UserAgent != "" {
		fields = append(fields, logger.UserAgent(e.UserAgent))
	}
	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}
	s.log.Log(zapLevel(e.Level), e.Message, fields...)
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelAlert:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
