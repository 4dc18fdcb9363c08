package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denizatac/gatehouse/guard"
	"github.com/denizatac/gatehouse/store"
)

func (s *Server) handleListMessages(c *gin.Context) {
	identity := guard.MustIdentity(c.Request.Context())

	msgs, err := s.messages.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		s.log.Error("list messages", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handlePostMessage(c *gin.Context) {
	identity := guard.MustIdentity(c.Request.Context())

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		errorJSON(c, http.StatusBadRequest, "message cannot be empty")
		return
	}

	msg := &store.Message{UserID: identity.UserID, Text: text}
	if err := s.messages.Add(c.Request.Context(), msg); err != nil {
		s.log.Error("store message", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	// Canned acknowledgement a moment later; detached from the request
	// context on purpose, the reply outlives this request.
	userID := identity.UserID
	time.AfterFunc(systemReplyDelay, func() {
		reply := &store.Message{
			UserID:     userID,
			Text:       "Your message has been received. We will get back to you shortly.",
			FromSystem: true,
		}
		if err := s.messages.Add(context.Background(), reply); err != nil {
			s.log.Error("store system reply", "error", err)
		}
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (s *Server) handleClearMessages(c *gin.Context) {
	identity := guard.MustIdentity(c.Request.Context())

	if err := s.messages.DeleteForUser(c.Request.Context(), identity.UserID); err != nil {
		s.log.Error("clear messages", "error", err)
		errorJSON(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
