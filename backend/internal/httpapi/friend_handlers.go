package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tsunagu/backend/internal/friends"
	"tsunagu/backend/pkg/apperrors"
)

type sendFriendRequestRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Message     string `json:"message"`
}

func (s *Server) sendFriendRequest(c *gin.Context) {
	var req sendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("recipient_id is required"))
		return
	}

	request, err := s.friends.CreateFriendRequest(c.Request.Context(), currentUserID(c), req.RecipientID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, request)
}

func (s *Server) acceptFriendRequest(c *gin.Context) {
	accepted, err := s.friends.AcceptFriendRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !accepted {
		respondError(c, apperrors.NewNotFound("friend request not found or already handled"))
		return
	}
	respondOK(c, gin.H{"accepted": true})
}

func (s *Server) rejectFriendRequest(c *gin.Context) {
	rejected, err := s.friends.RejectFriendRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !rejected {
		respondError(c, apperrors.NewNotFound("friend request not found or already handled"))
		return
	}
	respondOK(c, gin.H{"rejected": true})
}

func (s *Server) listReceivedRequests(c *gin.Context) {
	requests, err := s.friends.GetReceivedRequests(c.Request.Context(), currentUserID(c),
		friends.RequestStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"requests": requests, "count": len(requests)})
}

func (s *Server) listSentRequests(c *gin.Context) {
	requests, err := s.friends.GetSentRequests(c.Request.Context(), currentUserID(c),
		friends.RequestStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"requests": requests, "count": len(requests)})
}

func (s *Server) listFriends(c *gin.Context) {
	list, err := s.friends.GetFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"friends": list, "count": len(list)})
}

func (s *Server) removeFriend(c *gin.Context) {
	removed, err := s.friends.RemoveFriend(c.Request.Context(), currentUserID(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, apperrors.NewNotFound("friendship not found"))
		return
	}
	respondOK(c, gin.H{"removed": true})
}

func (s *Server) listMutualFriends(c *gin.Context) {
	mutual, err := s.friends.GetMutualFriends(c.Request.Context(), currentUserID(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"friends": mutual, "count": len(mutual)})
}

func (s *Server) getConnectionMap(c *gin.Context) {
	depth, err := strconv.Atoi(c.DefaultQuery("depth", "2"))
	if err != nil || depth < 1 {
		depth = 2
	}
	if depth > 2 {
		depth = 2
	}

	cm := s.friends.GetFriendConnectionMap(c.Request.Context(), currentUserID(c), depth)
	respondOK(c, cm)
}
