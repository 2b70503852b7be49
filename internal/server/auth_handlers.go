package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dr-omr/tibrah-gateway/internal/ratelimit"
)

// AdminLoginRequest represents an administrator passcode exchange request
type AdminLoginRequest struct {
	Passcode string `json:"passcode" binding:"required" validate:"required,passcode"`
}

// AdminLoginResponse represents a successful passcode exchange
type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// @Summary Administrator login
// @Description Exchange the admin passcode for an API token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Login request"
// @Success 200 {object} AdminLoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/admin/login [post]
func (s *Server) adminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid_request",
			"message": "Passcode is required",
		})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid_request",
			"message": "Passcode is malformed",
		})
		return
	}

	clientKey := ratelimit.ClientKey(c.Request)

	// Rate gate first: a limited client never reaches verification
	limited, err := s.limiter.Check(
		c.Request.Context(),
		clientKey,
		s.config.RateLimit.LoginMaxAttempts,
		s.config.RateLimit.LoginWindow,
	)
	if err != nil {
		// Fail open on limiter backend errors: this gate protects UX, and a
		// dead Redis must not lock out the administrator
		s.logger.Warn().Err(err).Str("client", clientKey).Msg("Rate limit check failed, allowing attempt")
		limited = false
	}
	if limited {
		s.logger.Warn().Str("client", clientKey).Msg("Admin login rate limited")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "rate_limited",
			"message": "Too many login attempts. Please try again later.",
		})
		return
	}

	ok, configured := s.verifier.Verify(req.Passcode)
	if !configured {
		// Misconfiguration is never treated as a successful verification
		s.logger.Error().Msg("ADMIN_PASSCODE is not configured - admin login cannot succeed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "server_misconfigured",
			"message": "Admin login is not available",
		})
		return
	}
	if !ok {
		s.logger.Warn().Str("client", clientKey).Msg("Invalid admin passcode attempt")
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "invalid_passcode",
			"message": "Invalid passcode",
		})
		return
	}

	token, err := s.verifier.IssueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue admin token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "token_generation_failed",
			"message": "Failed to complete login",
		})
		return
	}

	s.logger.Info().Str("client", clientKey).Msg("Admin login succeeded")

	c.JSON(http.StatusOK, AdminLoginResponse{
		Success: true,
		Token:   token,
		Message: "Admin access granted",
	})
}

// @Summary Get current classification
// @Description Returns the auth classification of the calling credentials
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Classification
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (s *Server) getClassification(c *gin.Context) {
	cls, exists := GetClassification(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "unauthenticated",
			"message": "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, cls)
}

// @Summary Gateway status
// @Description Admin-only view of the gateway's effective configuration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/admin/status [get]
func (s *Server) adminStatus(c *gin.Context) {
	limiterBackend := "memory"
	if _, ok := s.limiter.(*ratelimit.RedisStore); ok {
		limiterBackend = "redis"
	}

	c.JSON(http.StatusOK, gin.H{
		"version":             s.version,
		"passcode_configured": s.config.Admin.Passcode != "",
		"token_stable":        s.config.Admin.APISecret != "",
		"limiter_backend":     limiterBackend,
		"login_max_attempts":  s.config.RateLimit.LoginMaxAttempts,
		"login_window_ms":     s.config.RateLimit.LoginWindow.Milliseconds(),
		"routes": gin.H{
			"admin_only":         len(s.config.Routes.AdminOnly),
			"authenticated_only": len(s.config.Routes.AuthenticatedOnly),
			"auth_pages":         len(s.config.Routes.AuthPages),
			"excluded":           len(s.config.Routes.Excluded),
		},
	})
}
