package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/denizatac/gatehouse/guard"
	"github.com/denizatac/gatehouse/store"
)

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	user, err := s.users.ByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "user not found")
			return
		}
		s.log.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.log.Error("list users", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, users)
}

type photoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

var (
	photoDataPrefixes = []string{
		"data:image/jpeg", "data:image/jpg", "data:image/png",
		"data:image/gif", "data:image/webp",
	}
	photoExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

func validPhotoURL(raw string) bool {
	if strings.HasPrefix(raw, "data:image/") {
		for _, prefix := range photoDataPrefixes {
			if strings.HasPrefix(raw, prefix) {
				return true
			}
		}
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	lower := strings.ToLower(raw)
	for _, ext := range photoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *Server) handleUpdatePhoto(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req photoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhotoURL == "" {
		errorJSON(c, http.StatusBadRequest, "photoUrl is required")
		return
	}
	if !validPhotoURL(req.PhotoURL) {
		errorJSON(c, http.StatusBadRequest, "invalid photo format, only jpg, jpeg, png, gif and webp are supported")
		return
	}

	if err := s.users.UpdatePhoto(c.Request.Context(), id, req.PhotoURL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "user not found")
			return
		}
		s.log.Error("update photo", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile photo updated", "profilePhoto": req.PhotoURL})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	// Self-deletion is categorically disallowed, admin flag or not.
	requester := guard.MustIdentity(c.Request.Context())
	if requester.UserID == id {
		errorJSON(c, http.StatusBadRequest, "you cannot delete your own account")
		return
	}

	if err := s.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "user not found")
			return
		}
		s.log.Error("delete user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted", "userId": id})
}
