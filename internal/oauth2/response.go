package oauth2

// TokenResponse is the RFC 6749 §5.1 token response.
// RefreshToken carries the plaintext opaque token; this is the only
// place it ever exists, it is not recoverable afterwards.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`

	// Extra holds grant-specific additional fields, merged into the
	// JSON object by the HTTP boundary.
	Extra map[string]any `json:"-"`
}
