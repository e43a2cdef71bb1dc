package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name"`
}

func loginHandler(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "phone is required")
			return
		}
		sess, user, err := sessions.Login(c.Request.Context(), currentSession(c).SessionID, req.Phone, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess, "user": user})
	}
}

func logoutHandler(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Logout(c.Request.Context(), currentSession(c).SessionID); err != nil {
			respondError(c, err)
			return
		}
		c.SetCookie(sessionCookie, "", -1, cookiePath, "", cookieSecure, cookieHTTPOnly)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func meHandler(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if !sess.IsAuthenticated() {
			c.JSON(http.StatusOK, gin.H{"session": sess})
			return
		}
		user, err := sessions.User(c.Request.Context(), sess)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess, "user": user})
	}
}
