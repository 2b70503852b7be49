package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dr-omr/tibrah-gateway/internal/auth"
	"github.com/dr-omr/tibrah-gateway/internal/routeguard"
)

const classificationKey = "classification"

func setClassification(c *gin.Context, cls auth.Classification) {
	c.Set(classificationKey, cls)
}

// GetClassification returns the auth classification stored by RequireAuth or
// RequireAdmin.
func GetClassification(c *gin.Context) (auth.Classification, bool) {
	value, exists := c.Get(classificationKey)
	if !exists {
		return auth.Classification{}, false
	}

	cls, ok := value.(auth.Classification)
	return cls, ok
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, code, message string) {
	log.Warn().
		Str("error", code).
		Str("path", c.Request.URL.Path).
		Str("client_ip", c.ClientIP()).
		Msg(message)
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
	c.Abort()
}

// RequireAuth resolves request credentials and rejects unauthenticated
// callers with a 401 JSON body. The classification is stored on the context
// for the wrapped handler.
func RequireAuth(resolver *auth.Resolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cls := resolver.Resolve(c.Request.Header)
		if !cls.Authenticated {
			respondWithError(c, log, http.StatusUnauthorized, "unauthenticated", "Authentication required")
			return
		}

		setClassification(c, cls)
		c.Next()
	}
}

// RequireAdmin resolves request credentials and additionally rejects
// non-admin callers with a 403 JSON body.
func RequireAdmin(resolver *auth.Resolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cls := resolver.Resolve(c.Request.Header)
		if !cls.Authenticated {
			respondWithError(c, log, http.StatusUnauthorized, "unauthenticated", "Authentication required")
			return
		}

		if !cls.IsAdmin {
			respondWithError(c, log, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}

		setClassification(c, cls)
		c.Next()
	}
}

// edgeGuardMiddleware applies the route guard to every page request before
// handler logic runs. API and excluded paths bypass it; they carry their own
// credentials or are never guarded.
func (s *Server) edgeGuardMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/health" || s.guard.Excluded(path) {
			c.Next()
			return
		}

		decision := s.guard.Decide(path, s.readArtifact(c))
		if decision.Action == routeguard.ActionRedirect {
			// Browser navigation: surface as a redirect, never an error body
			c.Redirect(http.StatusFound, decision.RedirectLocation())
			c.Abort()
			return
		}

		c.Next()
	}
}

// readArtifact extracts the session artifact from the tibrah_auth cookie.
// Absent or malformed cookies yield the zero artifact (unauthenticated).
// Cookie values arrive URL-encoded; gin unescapes them on read.
func (s *Server) readArtifact(c *gin.Context) routeguard.Artifact {
	raw, err := c.Cookie(sessionCookie)
	if err != nil {
		return routeguard.Artifact{}
	}

	return routeguard.ParseArtifact([]byte(raw))
}
