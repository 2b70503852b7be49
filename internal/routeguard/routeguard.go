// Package routeguard implements the edge-stage allow/redirect decision that
// runs before any page handler.
//
// The decision is based on a client-held session artifact that is not
// cryptographically signed: the guard trusts its shape, not its
// authenticity. It is a fast UX gate only; real authorization is re-checked
// at the API layer against header credentials.
package routeguard

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dr-omr/tibrah-gateway/internal/config"
)

const (
	// LoginPath is where unauthenticated visitors are redirected.
	LoginPath = "/login"
	// RootPath is where already-authenticated visitors of auth pages land.
	RootPath = "/"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Artifact is the client-held session record presented on each request.
type Artifact struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ParseArtifact decodes a raw session artifact. Any parse failure yields the
// zero Artifact, which classifies as unauthenticated; malformed artifacts
// are a silent fallback, not an error.
func ParseArtifact(raw []byte) Artifact {
	var a Artifact
	if len(raw) == 0 {
		return Artifact{}
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}
	}
	return a
}

// Authenticated reports whether the artifact has a valid shape: a non-empty
// email and a known role.
func (a Artifact) Authenticated() bool {
	return a.Email != "" && (a.Role == RoleUser || a.Role == RoleAdmin)
}

// IsAdmin reports whether the artifact asserts the admin role.
func (a Artifact) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Action is the outcome kind of an edge decision
type Action string

const (
	ActionAllow    Action = "allow"
	ActionRedirect Action = "redirect"
)

// Decision is the outcome of classifying one request path. The caller
// performs the redirect or continues processing; the guard has no side
// effects of its own.
type Decision struct {
	Action Action
	Target string
	Query  url.Values
}

// RedirectLocation renders the decision target with its query string, ready
// for a Location header.
func (d Decision) RedirectLocation() string {
	if len(d.Query) == 0 {
		return d.Target
	}
	return d.Target + "?" + d.Query.Encode()
}

// Guard classifies paths against the three route classes. Pure computation
// over static tables; never blocks on network or disk.
type Guard struct {
	tables config.RouteTables
}

// New creates a guard over the given route tables.
func New(tables config.RouteTables) *Guard {
	return &Guard{tables: tables}
}

// Excluded reports whether the path belongs to the asset/static/internal set
// the edge layer never guards.
func (g *Guard) Excluded(path string) bool {
	return matchesAny(path, g.tables.Excluded)
}

// Decide classifies path against the route tables, in order: admin-only,
// authenticated-only, login/registration pages. Everything else is public.
func (g *Guard) Decide(path string, artifact Artifact) Decision {
	authenticated := artifact.Authenticated()

	switch {
	case matchesAny(path, g.tables.AdminOnly):
		if authenticated && artifact.IsAdmin() {
			return Decision{Action: ActionAllow}
		}
		return Decision{
			Action: ActionRedirect,
			Target: LoginPath,
			Query: url.Values{
				"redirect": {path},
				"reason":   {"admin"},
			},
		}

	case matchesAny(path, g.tables.AuthenticatedOnly):
		if authenticated {
			return Decision{Action: ActionAllow}
		}
		return Decision{
			Action: ActionRedirect,
			Target: LoginPath,
			Query: url.Values{
				"redirect": {path},
			},
		}

	case matchesAny(path, g.tables.AuthPages):
		// Already logged in: nothing to do on a login page
		if authenticated {
			return Decision{Action: ActionRedirect, Target: RootPath}
		}
		return Decision{Action: ActionAllow}
	}

	return Decision{Action: ActionAllow}
}

// matchesAny reports whether path equals a prefix or sits beneath it. Plain
// string prefixing would make "/admin" capture "/administrivia".
func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
