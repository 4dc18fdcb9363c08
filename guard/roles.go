package guard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireAdmin allows the request through only when the attached
// identity carries the admin flag. Must run behind an auth guard.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !id.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}

// RequireOwnerOrAdmin allows the request through when the identity's
// subject matches the resource owner id in the named route parameter,
// or when the identity is an admin. Ownership and admin-ness are each
// sufficient on their own.
func RequireOwnerOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ownerID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || ownerID < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		if id.UserID != ownerID && !id.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed to access this resource"})
			return
		}
		c.Next()
	}
}

// CanActOn reports whether the identity may act on the given resource
// owner: the owner themselves or any admin. Pure predicate over claims,
// usable outside the middleware chain.
func CanActOn(id Identity, resourceOwnerID int64) bool {
	return id.UserID == resourceOwnerID || id.IsAdmin
}
