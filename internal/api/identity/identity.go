// Package identity carries the authenticated user id through a request.
// The auth middleware resolves it from the bearer token; handlers read it
// back when scoping storage access.
package identity

import "github.com/gin-gonic/gin"

const contextKey = "auth_user_id"

// Set records the authenticated user id on the request context.
func Set(c *gin.Context, userID string) {
	c.Set(contextKey, userID)
}

// UserID returns the authenticated user id, or "" when the request never
// passed the auth middleware.
func UserID(c *gin.Context) string {
	id, _ := c.Get(contextKey)
	s, _ := id.(string)
	return s
}
