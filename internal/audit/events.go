package audit

import "context"

// AccessTokenIssued se emite al firmar un access token.
// JTI es el mismo que va en el claim "jti": la correlación entre el
// token emitido y su registro de auditoría depende de eso.
type AccessTokenIssued struct {
	UserID    string
	ClientID  string
	GrantType string
	Scopes    []string
	JTI       string
}

// RefreshTokenIssued se emite al persistir un refresh token nuevo.
type RefreshTokenIssued struct {
	UserID   string
	ClientID string
	TokenID  string
	Scopes   []string
}

// Publisher recibe las señales de dominio del core. El wiring de
// auditoría (u otros consumidores) vive afuera del grant handler.
type Publisher interface {
	AccessTokenIssued(ctx context.Context, e AccessTokenIssued)
	RefreshTokenIssued(ctx context.Context, e RefreshTokenIssued)
}

// SinkPublisher implementa Publisher reenviando cada señal como evento
// de auditoría al Sink. Es el wiring por defecto del composition root.
type SinkPublisher struct {
	Sink Sink
}

func NewSinkPublisher(sink Sink) *SinkPublisher {
	return &SinkPublisher{Sink: sink}
}

func (p *SinkPublisher) AccessTokenIssued(ctx context.Context, e AccessTokenIssued) {
	p.Sink.Record(ctx, Event{
		Type:     EventAccessTokenIssued,
		Level:    LevelInfo,
		Message:  "access token issued",
		UserID:   e.UserID,
		ClientID: e.ClientID,
		Context: map[string]any{
			"grant_type": e.GrantType,
			"scopes":     e.Scopes,
			"jti":        e.JTI,
		},
	})
}

func (p *SinkPublisher) RefreshTokenIssued(ctx context.Context, e RefreshTokenIssued) {
	p.Sink.Record(ctx, Event{
		Type:     EventRefreshTokenIssued,
		Level:    LevelInfo,
		Message:  "refresh token issued",
		UserID:   e.UserID,
		ClientID: e.ClientID,
		Context: map[string]any{
			"token_id": e.TokenID,
			"scopes":   e.Scopes,
		},
	})
}
