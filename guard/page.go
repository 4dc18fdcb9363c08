package guard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/denizatac/gatehouse/token"
)

// Redirect targets for the page guards. Browser navigation never sees
// an error body or any detail about why a token failed; it only ever
// observes a redirect.
const (
	LoginPath   = "/login"
	ProfilePath = "/profile"
	HomePath    = "/"
)

// RequirePageAuth returns a middleware enforcing cookie authentication
// on browser routes. Any verification failure redirects to the login
// page. On success the verified identity is attached to the request
// context.
func RequirePageAuth(svc *token.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()

		claims, raw, err := verifyCookie(svc, c)
		if err != nil {
			logAuthFailure(logger, "page", requestID, raw, err, time.Since(start))
			redirect(c, LoginPath)
			return
		}

		attachIdentity(c, claims, requestID)
		logAuthSuccess(logger, "page", requestID, claims.UserID, raw, time.Since(start))

		c.Next()
	}
}

// RedirectIfLoggedIn is the inverse policy for the login and register
// pages: a browser that already holds a valid token is sent to the
// profile page instead of re-seeing an entry form. Anyone else passes
// through.
func RedirectIfLoggedIn(svc *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, err := verifyCookie(svc, c); err == nil {
			redirect(c, ProfilePath)
			return
		}
		c.Next()
	}
}

// RequireAdminPage composes page authentication with an admin check.
// Verification failures go to the login page; an authenticated
// non-admin is sent back to the landing page rather than treated as an
// error.
func RequireAdminPage(svc *token.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()

		claims, raw, err := verifyCookie(svc, c)
		if err != nil {
			logAuthFailure(logger, "page", requestID, raw, err, time.Since(start))
			redirect(c, LoginPath)
			return
		}
		if !claims.IsAdmin {
			redirect(c, HomePath)
			return
		}

		attachIdentity(c, claims, requestID)
		logAuthSuccess(logger, "page", requestID, claims.UserID, raw, time.Since(start))

		c.Next()
	}
}

func verifyCookie(svc *token.Service, c *gin.Context) (*token.Claims, string, error) {
	raw, err := cookieToken(c.Request)
	if err != nil {
		return nil, raw, err
	}
	claims, err := svc.Verify(raw)
	if err != nil {
		return nil, raw, err
	}
	return claims, raw, nil
}

func attachIdentity(c *gin.Context, claims *token.Claims, requestID string) {
	ctx := WithIdentity(c.Request.Context(), identityFromClaims(claims))
	ctx = WithRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)
}

func redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
