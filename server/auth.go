package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/denizatac/gatehouse/store"
	"github.com/denizatac/gatehouse/token"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
}

// validate normalizes the request in place and returns the first
// problem found.
func (r *registerRequest) validate() string {
	if r.Username == "" || r.Email == "" || r.Password == "" || r.Birthdate == "" {
		return "username, email, password and birthdate are required"
	}
	r.Username = strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(r.Username))
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return "username must be between 3 and 50 characters"
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !emailPattern.MatchString(r.Email) {
		return "a valid email address is required"
	}
	if len(r.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if _, err := time.Parse("2006-01-02", r.Birthdate); err != nil {
		return "a valid birthdate is required (YYYY-MM-DD)"
	}
	return ""
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(c, http.StatusBadRequest, msg)
		return
	}

	birthdate, _ := time.Parse("2006-01-02", req.Birthdate)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("hash password", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Birthdate:    birthdate,
	}
	if err := s.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			errorJSON(c, http.StatusConflict, "this email is already in use")
			return
		}
		s.log.Error("create user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "userId": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		errorJSON(c, http.StatusBadRequest, "email and password are required")
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
			// Same answer as a wrong password; do not reveal which.
			errorJSON(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.log.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errorJSON(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	claims := token.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	accessToken, err := s.access.Issue(claims)
	if err != nil {
		s.log.Error("issue access token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}
	refreshToken, err := s.refresh.Issue(claims)
	if err != nil {
		s.log.Error("issue refresh token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "login successful",
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// handleRefresh exchanges a valid refresh token for a fresh access
// token. The claims are re-read from the user record so a privilege
// change takes effect at the next refresh rather than at the refresh
// token's distant expiry.
func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		errorJSON(c, http.StatusBadRequest, "refreshToken is required")
		return
	}

	claims, err := s.refresh.Verify(req.RefreshToken)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	user, err := s.users.ByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusUnauthorized, "account no longer exists")
			return
		}
		s.log.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	accessToken, err := s.access.Issue(token.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		s.log.Error("issue access token", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": accessToken})
}
