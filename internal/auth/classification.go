package auth

import (
	"net/http"
	"strings"
)

// Method identifies which credential produced a classification
type Method string

const (
	MethodPrivilegedToken Method = "privileged-token"
	MethodBearer          Method = "bearer"
	MethodNone            Method = "none"
)

// Classification is the per-request authentication result. It is computed
// fresh on every request and never persisted.
type Classification struct {
	Authenticated bool   `json:"authenticated"`
	IsAdmin       bool   `json:"is_admin"`
	Email         string `json:"email,omitempty"`
	Method        Method `json:"method"`
}

const (
	adminTokenHeader = "X-Admin-Token"
	bearerPrefix     = "Bearer "

	// minBearerTokenLen is a format sanity floor, not a security boundary.
	minBearerTokenLen = 8
)

// Resolver classifies request credentials. Header inspection only:
// deterministic, no side effects, no I/O.
type Resolver struct {
	apiSecret  string
	adminEmail string
}

// NewResolver creates a resolver holding the configured admin API secret and
// the email reported for privileged-token classifications.
func NewResolver(apiSecret, adminEmail string) *Resolver {
	return &Resolver{
		apiSecret:  apiSecret,
		adminEmail: adminEmail,
	}
}

// Resolve inspects request headers and classifies the caller.
//
// The privileged-token header is checked first and requires an exact match
// against the configured secret. The bearer path is a soft validator only:
// it checks shape, not authenticity, since full verification would need a
// shared session store outside this layer. Callers must not treat a bearer
// classification as proof of identity.
func (r *Resolver) Resolve(h http.Header) Classification {
	if r.apiSecret != "" {
		if token := h.Get(adminTokenHeader); token != "" && token == r.apiSecret {
			return Classification{
				Authenticated: true,
				IsAdmin:       true,
				Email:         r.adminEmail,
				Method:        MethodPrivilegedToken,
			}
		}
	}

	if authHeader := h.Get("Authorization"); strings.HasPrefix(authHeader, bearerPrefix) {
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if len(token) >= minBearerTokenLen {
			return Classification{
				Authenticated: true,
				Method:        MethodBearer,
			}
		}
	}

	return Classification{Method: MethodNone}
}
