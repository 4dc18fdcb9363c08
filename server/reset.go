package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/denizatac/gatehouse/mail"
	"github.com/denizatac/gatehouse/store"
)

// resetTokenTTL bounds how long a password reset link stays usable.
const resetTokenTTL = time.Hour

// newResetToken draws 32 random bytes; reset tokens are single-purpose
// random credentials, not JWTs.
func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		errorJSON(c, http.StatusBadRequest, "email address is required")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(req.Email) {
		errorJSON(c, http.StatusBadRequest, "a valid email address is required")
		return
	}

	user, err := s.users.ByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "this email address is not registered")
			return
		}
		s.log.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	tok, err := newResetToken()
	if err != nil {
		s.log.Error("generate reset token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.users.SetResetToken(c.Request.Context(), req.Email, tok, time.Now().Add(resetTokenTTL)); err != nil {
		s.log.Error("store reset token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.BaseURL, "/"), tok)
	subject, body := mail.ResetMessage(user.Username, resetLink)
	if err := s.mailer.Send(c.Request.Context(), user.Email, subject, body); err != nil {
		s.log.Error("send reset mail", "error", err)
		errorJSON(c, http.StatusInternalServerError, "could not send the reset email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "a password reset link has been sent to your email address",
	})
}

func (s *Server) handleVerifyResetToken(c *gin.Context) {
	tok := c.Param("token")

	user, err := s.users.ByResetToken(c.Request.Context(), tok)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "invalid or expired token"})
			return
		}
		s.log.Error("load user by reset token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "email": user.Email})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		errorJSON(c, http.StatusBadRequest, "token and new password are required")
		return
	}
	if len(req.NewPassword) < 8 {
		errorJSON(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := s.users.ByResetToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusBadRequest, "invalid or expired token")
			return
		}
		s.log.Error("load user by reset token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("hash password", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.users.UpdatePassword(c.Request.Context(), user.ID, string(hash)); err != nil {
		s.log.Error("update password", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "your password has been updated"})
}
