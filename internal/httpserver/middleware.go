package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
)

const (
	sessionCookie   = "sessionId"
	sessionCtxKey   = "session"
	cookieMaxAge    = 30 * 24 * 60 * 60
	cookiePath      = "/"
	cookieSecure    = false
	cookieHTTPOnly  = true
	sessionIDMaxLen = 128
)

// sessionMiddleware resolves the session cookie, minting a guest session when
// the cookie is missing, unknown or expired, and re-sets the cookie so the
// client always leaves with a live session.
func sessionMiddleware(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(sessionCookie)
		if len(cookie) > sessionIDMaxLen {
			cookie = ""
		}

		sess, err := sessions.GetOrCreate(c.Request.Context(), cookie, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		if sess.SessionID != cookie {
			c.SetCookie(sessionCookie, sess.SessionID, cookieMaxAge, cookiePath, "", cookieSecure, cookieHTTPOnly)
		}

		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil
	}
	return v.(*domain.Session)
}

// requireAuth rejects requests whose session is not bound to a user.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects sessions that are not bound to an admin user.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if sess.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
