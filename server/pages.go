package server

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denizatac/gatehouse/guard"
)

//go:embed web
var webFS embed.FS

// registerPages wires the browser routes. Entry pages bounce an
// already-authenticated browser to the profile; protected pages
// redirect to login on any verification failure; the admin page sends
// authenticated non-admins back to the landing page.
func (s *Server) registerPages(router *gin.Engine) {
	entry := guard.RedirectIfLoggedIn(s.access)
	auth := guard.RequirePageAuth(s.access, s.log)
	admin := guard.RequireAdminPage(s.access, s.log)

	router.GET("/", entry, s.servePage("login.html"))
	router.GET("/login", entry, s.servePage("login.html"))
	router.GET("/register", entry, s.servePage("register.html"))

	router.GET("/profile", auth, s.servePage("profile.html"))
	router.GET("/dashboard", auth, s.servePage("dashboard.html"))
	router.GET("/settings", auth, s.servePage("settings.html"))
	router.GET("/messages", auth, s.servePage("messages.html"))

	router.GET("/admin", admin, s.servePage("admin.html"))

	router.GET("/forgot-password", s.servePage("forgot-password.html"))
	router.GET("/reset-password", s.servePage("reset-password.html"))
}

func (s *Server) servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := webFS.ReadFile("web/" + name)
		if err != nil {
			s.log.Error("missing page", "page", name, "error", err)
			c.String(http.StatusInternalServerError, "page unavailable")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
}
