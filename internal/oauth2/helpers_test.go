package oauth2_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
	"github.com/dropDatabas3/tokensmith/internal/security/pkce"
	"github.com/dropDatabas3/tokensmith/internal/security/secretbox"
	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
	"github.com/dropDatabas3/tokensmith/internal/store/memory"
)

// recordSink captures audit events for assertions. Safe for concurrent
// use: the code replay test records from two goroutines.
type recordSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordSink) Record(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordSink) byType(eventType string) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires the token endpoint core over the in-memory store.
type fixture struct {
	store      *memory.Store
	hasher     *tokens.Hasher
	issuer     *jwtx.Issuer
	sink       *recordSink
	auth       *oauth2.Authenticator
	dispatcher *oauth2.Dispatcher
	revoker    *oauth2.Revoker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()

	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 100)
	}
	box, err := secretbox.NewFromBytes(raw)
	if err != nil {
		t.Fatalf("secretbox: %v", err)
	}
	hasher, err := tokens.NewHasher([]byte("unit-test-hmac-secret-0123456789abcdef"))
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	mgr := jwtx.NewManager(store.Keys(), box)
	if _, err := mgr.Generate(context.Background(), repository.AlgES256, time.Hour); err != nil {
		t.Fatalf("signing key: %v", err)
	}
	issuer := jwtx.NewIssuer("https://auth.test.local", jwtx.NewKeySource(store.Keys(), time.Minute), box)

	sink := &recordSink{}
	publisher := audit.NewSinkPublisher(sink)

	dispatcher := oauth2.NewDispatcher(
		oauth2.NewAuthorizationCodeHandler(oauth2.AuthorizationCodeDeps{
			Codes:         store.Codes(),
			RefreshTokens: store.RefreshTokens(),
			Hasher:        hasher,
			Issuer:        issuer,
			Publisher:     publisher,
			Audit:         sink,
			RefreshTTL:    time.Hour,
		}),
		oauth2.NewClientCredentialsHandler(oauth2.ClientCredentialsDeps{
			Issuer:    issuer,
			Publisher: publisher,
		}),
		oauth2.NewRefreshTokenHandler(oauth2.RefreshTokenDeps{
			RefreshTokens: store.RefreshTokens(),
			Hasher:        hasher,
			Issuer:        issuer,
			Publisher:     publisher,
			Audit:         sink,
			RefreshTTL:    time.Hour,
		}),
	)

	return &fixture{
		store:      store,
		hasher:     hasher,
		issuer:     issuer,
		sink:       sink,
		auth:       oauth2.NewAuthenticator(store.Clients(), sink),
		dispatcher: dispatcher,
		revoker: oauth2.NewRevoker(oauth2.RevokerDeps{
			RefreshTokens: store.RefreshTokens(),
			Blacklist:     store.Blacklist(),
			Hasher:        hasher,
			Issuer:        issuer,
		}),
	}
}

// seedConfidential registers a confidential client with the given plain
// secret (bcrypt MinCost keeps the suite fast).
func (f *fixture) seedConfidential(t *testing.T, clientID, secret string, mutate ...func(*repository.Client)) *repository.Client {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := string(hash)
	c := repository.Client{
		ID:          "id-" + clientID,
		ClientID:    clientID,
		Name:        clientID,
		Type:        repository.ClientTypeConfidential,
		SecretHash:  &h,
		RedirectURI: "https://app.test/callback",
		Scopes:      []string{"openid", "profile", "api:read"},
	}
	for _, m := range mutate {
		m(&c)
	}
	f.store.Clients().Seed(c)
	return &c
}

func (f *fixture) seedPublic(t *testing.T, clientID string, mutate ...func(*repository.Client)) *repository.Client {
	t.Helper()
	c := repository.Client{
		ID:          "id-" + clientID,
		ClientID:    clientID,
		Name:        clientID,
		Type:        repository.ClientTypePublic,
		RedirectURI: "https://app.test/callback",
		Scopes:      []string{"openid", "profile"},
	}
	for _, m := range mutate {
		m(&c)
	}
	f.store.Clients().Seed(c)
	return &c
}

// seedCode stores a hashed authorization code and returns the plaintext.
func (f *fixture) seedCode(t *testing.T, in repository.CreateAuthorizationCodeInput) string {
	t.Helper()
	plain, err := tokens.GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("opaque token: %v", err)
	}
	in.CodeHash = mustHash(t, f.hasher, plain)
	if in.TTL == 0 {
		in.TTL = 5 * time.Minute
	}
	if _, err := f.store.Codes().Create(context.Background(), in); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	return plain
}

// seedRefreshToken stores a hashed refresh token and returns the plaintext.
func (f *fixture) seedRefreshToken(t *testing.T, in repository.CreateRefreshTokenInput) string {
	t.Helper()
	plain, err := tokens.GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("opaque token: %v", err)
	}
	in.TokenHash = mustHash(t, f.hasher, plain)
	if in.TTL == 0 {
		in.TTL = time.Hour
	}
	if _, err := f.store.RefreshTokens().Create(context.Background(), in); err != nil {
		t.Fatalf("seed refresh token: %v", err)
	}
	return plain
}

func mustHash(t *testing.T, h *tokens.Hasher, token string) string {
	t.Helper()
	hash, err := h.Hash(token)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

// tokenRequest builds a Request from string params.
func tokenRequest(params map[string]string) *oauth2.Request {
	p := make(map[string]any, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &oauth2.Request{
		Params:    p,
		IPAddress: "203.0.113.7",
		UserAgent: "go-test",
	}
}

func s256Challenge(t *testing.T, verifier string) *string {
	t.Helper()
	ch, err := pkce.Challenge(verifier, pkce.MethodS256)
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	return &ch
}

func strPtr(s string) *string { return &s }
