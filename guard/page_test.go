package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denizatac/gatehouse/token"
)

func newPageTestRouter(svc *token.Service) *gin.Engine {
	router := gin.New()
	router.GET("/login", RedirectIfLoggedIn(svc), func(c *gin.Context) {
		c.String(http.StatusOK, "login form")
	})
	router.GET("/profile", RequirePageAuth(svc, nil), func(c *gin.Context) {
		id := MustIdentity(c.Request.Context())
		c.String(http.StatusOK, "profile of %s", id.Username)
	})
	router.GET("/admin", RequireAdminPage(svc, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "admin panel")
	})
	return router
}

func TestPageGuards(t *testing.T) {
	svc := newTestTokenService(t)
	router := newPageTestRouter(svc)

	user := issueTestToken(t, svc, token.Claims{UserID: 7, Email: "a@b.com", Username: "ana"})
	admin := issueTestToken(t, svc, token.Claims{UserID: 1, Email: "root@b.com", Username: "root", IsAdmin: true})
	expired := signRawToken(t, testSecret, time.Now().Add(-time.Minute))

	tests := []struct {
		name         string
		path         string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{name: "protected page without cookie redirects to login", path: "/profile", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "protected page with expired cookie redirects to login", path: "/profile", cookie: expired, wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "protected page with garbage cookie redirects to login", path: "/profile", cookie: "junk", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "protected page with valid cookie renders", path: "/profile", cookie: user, wantStatus: http.StatusOK},
		{name: "entry page without cookie renders", path: "/login", wantStatus: http.StatusOK},
		{name: "entry page with invalid cookie renders", path: "/login", cookie: "junk", wantStatus: http.StatusOK},
		{name: "entry page with valid cookie redirects to profile", path: "/login", cookie: user, wantStatus: http.StatusFound, wantLocation: ProfilePath},
		{name: "admin page without cookie redirects to login", path: "/admin", wantStatus: http.StatusFound, wantLocation: LoginPath},
		{name: "admin page as regular user redirects home", path: "/admin", cookie: user, wantStatus: http.StatusFound, wantLocation: HomePath},
		{name: "admin page as admin renders", path: "/admin", cookie: admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("location = %q, want %q", loc, tt.wantLocation)
			}
		})
	}
}

// Page routes must never consult the Authorization header; a bearer
// token alone does not authenticate browser navigation.
func TestPageGuardIgnoresBearerHeader(t *testing.T) {
	svc := newTestTokenService(t)
	router := newPageTestRouter(svc)

	valid := issueTestToken(t, svc, token.Claims{UserID: 7, Email: "a@b.com", Username: "ana"})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != LoginPath {
		t.Errorf("location = %q, want %q", loc, LoginPath)
	}
}
