package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the signing configuration for one token class. The
// access and refresh classes are separate Service instances and must
// never share a secret; that rule is enforced at config load, not here.
type Config struct {
	// Secret is the HMAC-SHA256 signing key, minimum 32 bytes.
	Secret []byte
	// TTL is the lifetime stamped into every issued token.
	TTL time.Duration
	// Leeway is the clock skew tolerance applied to expiry checks.
	// Zero means strict: a token is invalid the instant exp passes.
	Leeway time.Duration
}

// Service signs and verifies identity tokens for a single token class.
// It is stateless and safe for concurrent use.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a token service for one secret/TTL class.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 bytes (256 bits), got %d bytes", len(cfg.Secret))
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", cfg.TTL)
	}
	if cfg.Leeway < 0 {
		return nil, fmt.Errorf("clock skew leeway must be non-negative, got %v", cfg.Leeway)
	}
	return &Service{cfg: cfg, now: time.Now}, nil
}

// Issue signs the given claims into a compact token. The issued-at and
// expires-at timestamps are stamped here; any values on the input are
// ignored.
func (s *Service) Issue(c Claims) (string, error) {
	now := s.now()
	wc := wireClaims{
		UserID:   c.UserID,
		Email:    c.Email,
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &wc).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a presented token. On
// failure the returned error is always a *VerifyError carrying one of
// CodeMissing, CodeMalformed or CodeExpired. Verify never panics on
// absent or garbage input.
func (s *Service) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, newVerifyError(CodeMissing, "no token supplied", nil)
	}

	wc := &wireClaims{}
	parsed, err := jwt.ParseWithClaims(raw, wc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithLeeway(s.cfg.Leeway), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newVerifyError(CodeExpired, "token has expired", err)
		}
		return nil, newVerifyError(CodeMalformed, "invalid token signature or structure", err)
	}
	if !parsed.Valid {
		return nil, newVerifyError(CodeMalformed, "token is invalid", nil)
	}

	return wc.toClaims(), nil
}

// Decode reads the claims of a token WITHOUT checking its signature or
// expiry. It exists for logging and debug inspection only and must
// never feed an authorization decision; Verify is the trust boundary.
// Returns nil if the token is not structurally a JWT.
func (s *Service) Decode(raw string) *Claims {
	wc := &wireClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, wc); err != nil {
		return nil
	}
	return wc.toClaims()
}
