package jwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	"github.com/dropDatabas3/tokensmith/internal/security/keygen"
	"github.com/dropDatabas3/tokensmith/internal/security/secretbox"
)

var (
	// ErrNoActiveKey indica que no hay clave activa para firmar.
	ErrNoActiveKey = errors.New("jwt: no active signing key")

	// ErrKeyMismatch indica que el material de la clave no coincide con el
	// algoritmo declarado (ej: alg RS256 pero la privada es ECDSA).
	// Chequeo de integridad contra confusión/downgrade de algoritmo.
	ErrKeyMismatch = errors.New("jwt: key material does not match declared algorithm")
)

// Issuer firma access tokens usando la clave activa del KeySource.
// La clave privada vive cifrada en el repositorio y se descifra con el
// secretbox por cada firma.
type Issuer struct {
	Iss       string         // claim "iss"
	Keys      *KeySource     // resolución de claves (cacheada)
	Box       *secretbox.Box // descifrado de privadas en reposo
	AccessTTL time.Duration  // TTL por defecto (ej: 15m)
}

// NewIssuer construye el Issuer con TTL por defecto de 15 minutos.
func NewIssuer(iss string, keys *KeySource, box *secretbox.Box) *Issuer {
	return &Issuer{
		Iss:       iss,
		Keys:      keys,
		Box:       box,
		AccessTTL: 15 * time.Minute,
	}
}

// Payload son los datos variables de un access token.
// JTI se genera UNA vez por emisión (en el grant handler) y se comparte
// con los eventos de auditoría para correlación.
type Payload struct {
	Subject  string
	Audience string
	Scope    string
	JTI      string
	TTL      time.Duration // <= 0 usa AccessTTL
}

// Issue firma un access token compacto con la clave activa.
// Devuelve el JWT serializado y su instante de expiración.
func (i *Issuer) Issue(ctx context.Context, p Payload) (string, time.Time, error) {
	key, err := i.Keys.Active(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", time.Time{}, ErrNoActiveKey
		}
		return "", time.Time{}, err
	}

	priv, err := i.decryptPrivate(key)
	if err != nil {
		return "", time.Time{}, err
	}

	method := jwtv5.GetSigningMethod(key.Algorithm)
	if method == nil {
		return "", time.Time{}, fmt.Errorf("jwt: algoritmo %q desconocido", key.Algorithm)
	}

	ttl := p.TTL
	if ttl <= 0 {
		ttl = i.AccessTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss":   i.Iss,
		"sub":   p.Subject,
		"aud":   p.Audience,
		"scope": p.Scope,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   p.JTI,
	}
	tk := jwtv5.NewWithClaims(method, claims)
	tk.Header["kid"] = key.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(priv)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	return signed, exp, nil
}

// decryptPrivate descifra y parsea la privada, verificando que el tipo
// de material coincida con la familia del algoritmo declarado.
func (i *Issuer) decryptPrivate(key *repository.CryptoKey) (any, error) {
	pemStr, err := i.Box.Decrypt(key.PrivateKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("jwt: descifrar privada kid=%s: %w", key.KID, err)
	}
	priv, err := keygen.ParsePrivatePEM(pemStr)
	if err != nil {
		return nil, fmt.Errorf("jwt: parsear privada kid=%s: %w", key.KID, err)
	}
	switch priv.(type) {
	case *rsa.PrivateKey:
		if !repository.IsRSAFamily(key.Algorithm) {
			return nil, ErrKeyMismatch
		}
	case *ecdsa.PrivateKey:
		if !repository.IsECFamily(key.Algorithm) {
			return nil, ErrKeyMismatch
		}
	default:
		return nil, ErrKeyMismatch
	}
	return priv, nil
}

// Keyfunc devuelve un jwt.Keyfunc que elige la pubkey por 'kid' del token.
// Resuelve claves activas y retiradas (tokens pre-rotación siguen válidos
// hasta su exp).
func (i *Issuer) Keyfunc(ctx context.Context) jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid_missing")
		}
		key, err := i.Keys.ByKID(ctx, kid)
		if err != nil {
			return nil, err
		}
		if key.Algorithm != t.Method.Alg() {
			return nil, ErrKeyMismatch
		}
		return keygen.ParsePublicPEM(key.PublicKeyPEM)
	}
}

// Parse valida firma y expiración de un access token emitido por este
// servidor y devuelve sus claims. Lo usa el revoke endpoint para extraer
// jti/exp antes de blacklistear.
func (i *Issuer) Parse(ctx context.Context, tokenStr string) (jwtv5.MapClaims, error) {
	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(tokenStr, claims, i.Keyfunc(ctx),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
