package guard

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/denizatac/gatehouse/token"
)

// CookieName is the cookie consulted by the page guards. Page routes
// never read the Authorization header.
const CookieName = "token"

// bearerToken extracts the credential from an Authorization header.
// Expected format: "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "authorization header not found"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", &token.VerifyError{Code: token.CodeMalformed, Message: "invalid authorization header format, expected 'Bearer <token>'"}
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "token is empty"}
	}

	return raw, nil
}

// cookieToken extracts the credential from the token cookie.
func cookieToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "token cookie not found", Internal: err}
	}

	raw := strings.TrimSpace(cookie.Value)
	if raw == "" {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "token cookie is empty"}
	}

	return raw, nil
}

// metadataToken extracts the credential from gRPC metadata.
func metadataToken(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "authorization metadata not found"}
	}

	parts := strings.SplitN(values[0], " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", &token.VerifyError{Code: token.CodeMalformed, Message: "invalid authorization format, expected 'Bearer <token>'"}
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", &token.VerifyError{Code: token.CodeMissing, Message: "token is empty"}
	}

	return raw, nil
}
