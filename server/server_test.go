package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/denizatac/gatehouse/config"
	"github.com/denizatac/gatehouse/ratelimit"
	"github.com/denizatac/gatehouse/store"
	"github.com/denizatac/gatehouse/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// capturingSender records outbound mail instead of delivering it.
type capturingSender struct {
	to      string
	subject string
	body    string
}

func (s *capturingSender) Send(_ context.Context, to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return nil
}

type testEnv struct {
	server  *Server
	store   *store.Memory
	mailer  *capturingSender
	limiter *ratelimit.MemoryStore
}

func testConfig() config.Config {
	return config.Config{
		BaseURL:         "http://localhost:8080",
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		RefreshSecret:   "fedcba9876543210fedcba9876543210",
		AccessTTL:       time.Hour,
		RefreshTTL:      168 * time.Hour,
		RateLimitWindow: 15 * time.Minute,
		RateLimitMax:    100,
	}
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()

	mem := store.NewMemory()
	mailer := &capturingSender{}
	limiter := ratelimit.NewMemoryStore(ratelimit.Config{Window: cfg.RateLimitWindow, Limit: cfg.RateLimitMax})
	t.Cleanup(limiter.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, logger, mem, mem, mailer, limiter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testEnv{server: srv, store: mem, mailer: mailer, limiter: limiter}
}

// seedUser inserts a user with a bcrypt-hashed password and returns it.
func (e *testEnv) seedUser(t *testing.T, username, email, password string, isAdmin bool) *store.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &store.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Birthdate:    time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		IsAdmin:      isAdmin,
	}
	if err := e.store.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// tokenFor issues an access token for the given user.
func (e *testEnv) tokenFor(t *testing.T, u *store.User) string {
	t.Helper()
	raw, err := e.server.access.Issue(token.Claims{
		UserID: u.ID, Email: u.Email, Username: u.Username, IsAdmin: u.IsAdmin,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func (e *testEnv) request(t *testing.T, method, path, bearer string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "10.1.2.3:4567"
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return body
}
