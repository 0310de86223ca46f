package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tsunagu/backend/pkg/apperrors"
)

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("recipient_id and content are required"))
		return
	}

	message, err := s.messaging.SendMessage(c.Request.Context(), currentUserID(c), req.RecipientID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, message)
}

func (s *Server) listConversations(c *gin.Context) {
	threads, err := s.messaging.GetConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"conversations": threads, "count": len(threads)})
}

func (s *Server) listMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := s.messaging.GetMessages(c.Request.Context(), currentUserID(c), c.Param("userId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"messages": messages, "count": len(messages)})
}

func (s *Server) markMessageRead(c *gin.Context) {
	marked, err := s.messaging.MarkAsRead(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !marked {
		respondError(c, apperrors.NewNotFound("message not found"))
		return
	}
	respondOK(c, gin.H{"read": true})
}

func (s *Server) listBlockedUsers(c *gin.Context) {
	blocked, err := s.friends.GetBlockedUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"blocked": blocked, "count": len(blocked)})
}

func (s *Server) blockUser(c *gin.Context) {
	if err := s.friends.BlockUser(c.Request.Context(), currentUserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"blocked": true})
}

func (s *Server) unblockUser(c *gin.Context) {
	if err := s.friends.UnblockUser(c.Request.Context(), currentUserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"unblocked": true})
}
