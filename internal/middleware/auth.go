package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Coddedx/MoviePx-API/internal/auth/negotiator"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
	"github.com/Coddedx/MoviePx-API/internal/logger"
)

// unexported, collision-proof context key
type claimsContextKeyType struct{}

var claimsKey = claimsContextKeyType{}

// ClaimsFromContext extracts the authenticated token claims from context.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return claims, ok
}

// UserIDFromContext extracts the authenticated user id from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject(), true
}

type AuthMiddleware struct {
	negotiator *negotiator.Negotiator
	loginPath  string
}

// NewAuthMiddleware builds the request gate. loginPath is where
// interactive clients are redirected when they present no credential.
func NewAuthMiddleware(n *negotiator.Negotiator, loginPath string) *AuthMiddleware {
	return &AuthMiddleware{negotiator: n, loginPath: loginPath}
}

// RequireAuth gates a route group on the scheme negotiator's decision:
// a valid bearer token populates the identity context, an invalid one is
// rejected outright, and only credential-less requests are challenged.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := a.negotiator.Negotiate(c.GetHeader("Authorization"))

		switch decision.Outcome {
		case negotiator.BearerValidated:
			ctx := context.WithValue(c.Request.Context(), claimsKey, decision.Claims)
			c.Request = c.Request.WithContext(ctx)
			c.Next()

		case negotiator.ChallengeRequired:
			if interactive(c.Request) {
				c.Redirect(http.StatusFound, a.loginPath)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})

		case negotiator.Rejected:
			// Log the reason, never the token itself.
			logger.Warn("bearer token rejected", map[string]any{
				"path":   c.Request.URL.Path,
				"reason": decision.Err.Error(),
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid credentials",
			})
		}
	}
}

// RequireRole gates a route on a role claim. Must run after RequireAuth.
func (a *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		if !ok || !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient role",
			})
			return
		}
		c.Next()
	}
}

// interactive reports whether the request looks like a browser
// navigation rather than an API call. Only those get the OAuth redirect;
// API clients receive a plain 401.
func interactive(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
