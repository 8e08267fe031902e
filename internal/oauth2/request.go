package oauth2

// Request carries everything the core needs from an inbound token
// request, already detached from net/http. Params holds the POST form
// fields; values are `any` so handlers can distinguish "absent" from
// "present but not a string" (invalid_request per RFC).
type Request struct {
	// Params are the POST body fields (grant_type, code, scope, ...).
	Params map[string]any

	// AuthorizationHeader is the raw Authorization header, if any.
	AuthorizationHeader string

	// IPAddress and UserAgent feed the audit trail.
	IPAddress string
	UserAgent string
}

// String returns the param as a string. ok is false when the param is
// absent OR present with a non-string value; callers that must tell
// those apart use Has.
func (r *Request) String(key string) (string, bool) {
	v, present := r.Params[key]
	if !present {
		return "", false
	}
	s, isStr := v.(string)
	return s, isStr
}

// Has reports whether the param is present at all, regardless of type.
func (r *Request) Has(key string) bool {
	_, present := r.Params[key]
	return present
}
