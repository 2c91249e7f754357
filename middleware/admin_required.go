// Package middleware provides request filters for the parking API.
// file: middleware/admin_required.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"nilakkal-parking/logger"
)

// Session keys of the admin gate.
const (
	SessionKeyAdmin = "isAdmin"
	SessionKeyUser  = "user"
)

// IsAdmin reports whether the request's session is in the admin state.
func IsAdmin(c *gin.Context) bool {
	isAdmin, ok := sessions.Default(c).Get(SessionKeyAdmin).(bool)
	return ok && isAdmin
}

// AdminRequired is a middleware that checks if the user is an admin.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			logger.Warn.Printf("[AdminRequired] Unauthorized %s %s blocked", c.Request.Method, c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		logger.Debug.Println("[AdminRequired] Passed, continuing request")
		c.Next()
	}
}
