// Package server wires the authentication core, stores and mail
// boundary into the HTTP surface: JSON API routes guarded by bearer
// tokens and browser page routes guarded by the token cookie.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denizatac/gatehouse/config"
	"github.com/denizatac/gatehouse/guard"
	"github.com/denizatac/gatehouse/mail"
	"github.com/denizatac/gatehouse/ratelimit"
	"github.com/denizatac/gatehouse/store"
	"github.com/denizatac/gatehouse/token"
)

// Server owns the router and every dependency the handlers need.
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	users    store.Users
	messages store.Messages
	mailer   mail.Sender
	limiter  ratelimit.Store

	access  *token.Service
	refresh *token.Service

	router *gin.Engine
}

// New builds the server and its routes. The two token services are
// constructed here from the two configured secrets; they never share
// one.
func New(cfg config.Config, logger *slog.Logger, users store.Users, messages store.Messages, mailer mail.Sender, limiter ratelimit.Store) (*Server, error) {
	access, err := token.NewService(token.Config{Secret: []byte(cfg.JWTSecret), TTL: cfg.AccessTTL})
	if err != nil {
		return nil, err
	}
	refresh, err := token.NewService(token.Config{Secret: []byte(cfg.RefreshSecret), TTL: cfg.RefreshTTL})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		log:      logger,
		users:    users,
		messages: messages,
		mailer:   mailer,
		limiter:  limiter,
		access:   access,
		refresh:  refresh,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AccessTokens exposes the access-class token service, e.g. for the
// gRPC interceptor sharing this server's secret.
func (s *Server) AccessTokens() *token.Service {
	return s.access
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	s.registerPages(router)

	// Throttling wraps only the credential-entry endpoints; both share
	// one counter per client address.
	throttle := ratelimit.Middleware(s.limiter, "credentials", s.log)
	router.POST("/api/register", throttle, s.handleRegister)
	router.POST("/api/login", throttle, s.handleLogin)
	router.POST("/api/refresh", s.handleRefresh)

	router.POST("/api/forgot-password", s.handleForgotPassword)
	router.GET("/api/reset-token/:token", s.handleVerifyResetToken)
	router.POST("/api/reset-password", s.handleResetPassword)

	api := router.Group("/api", guard.RequireAPIAuth(s.access, s.log))
	api.GET("/users", guard.RequireAdmin(), s.handleListUsers)
	api.GET("/users/:id", guard.RequireOwnerOrAdmin("id"), s.handleGetUser)
	api.PUT("/users/:id/photo", guard.RequireOwnerOrAdmin("id"), s.handleUpdatePhoto)
	api.DELETE("/users/:id", guard.RequireAdmin(), s.handleDeleteUser)
	api.GET("/messages", s.handleListMessages)
	api.POST("/messages", s.handlePostMessage)
	api.DELETE("/messages", s.handleClearMessages)

	return router
}

// systemReplyDelay spaces the canned support acknowledgement a moment
// after the user's message.
const systemReplyDelay = time.Second

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
