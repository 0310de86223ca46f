package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/pkg/apperrors"
)

type provisionUserRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Avatar string `json:"avatar"`
}

func (s *Server) provisionUser(c *gin.Context) {
	var req provisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("a valid email is required"))
		return
	}

	user, err := s.directory.GetOrCreate(c.Request.Context(), req.Email, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}

func (s *Server) getCurrentUser(c *gin.Context) {
	user, err := s.directory.FindByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, apperrors.NewNotFound("user not found"))
		return
	}
	respondOK(c, user)
}

type updateProfileRequest struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid profile payload"))
		return
	}

	user, err := s.directory.UpdateProfile(c.Request.Context(), currentUserID(c), directory.ProfileUpdate{
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

type updateSettingsRequest struct {
	AcceptFrom         *string `json:"accept_from"`
	EmailNotifications *bool   `json:"email_notifications"`
}

func (s *Server) updateMessageSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("invalid settings payload"))
		return
	}

	update := directory.SettingsUpdate{EmailNotifications: req.EmailNotifications}
	if req.AcceptFrom != nil {
		acceptFrom := directory.AcceptFrom(*req.AcceptFrom)
		update.AcceptFrom = &acceptFrom
	}

	user, err := s.directory.UpdateMessageSettings(c.Request.Context(), currentUserID(c), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (s *Server) searchUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := s.directory.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"users": users, "count": len(users)})
}
