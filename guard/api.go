package guard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/denizatac/gatehouse/token"
)

// RequireAPIAuth returns a middleware enforcing bearer authentication
// on JSON routes. An absent credential yields 401; a malformed or
// expired one yields 403. Both carry a machine-readable error body.
// On success the verified identity is attached to the request context.
func RequireAPIAuth(svc *token.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Reuse an upstream correlation ID if the client sent one.
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		raw, err := bearerToken(c.Request)
		if err != nil {
			logAuthFailure(logger, "api", requestID, raw, err, time.Since(start))
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": reasonFor(err)})
			return
		}

		claims, err := svc.Verify(raw)
		if err != nil {
			logAuthFailure(logger, "api", requestID, raw, err, time.Since(start))
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": reasonFor(err)})
			return
		}

		ctx := WithIdentity(c.Request.Context(), identityFromClaims(claims))
		ctx = WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		logAuthSuccess(logger, "api", requestID, claims.UserID, raw, time.Since(start))

		c.Next()
	}
}

// statusFor maps a verification failure to an HTTP status: 401 for an
// absent credential, 403 for one that failed signature, structure or
// expiry checks.
func statusFor(err error) int {
	if token.CodeOf(err) == token.CodeMissing {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// reasonFor returns the human-readable reason string for an API error
// body. Kept coarse on purpose; detail stays in the logs.
func reasonFor(err error) string {
	switch token.CodeOf(err) {
	case token.CodeMissing:
		return "authentication token required"
	case token.CodeExpired:
		return "token has expired"
	default:
		return "invalid or malformed token"
	}
}
