package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodcritic-dev/foodcritic/internal/models"
)

// ProfilePhotoRequest points the caller's profile at an uploaded image
type ProfilePhotoRequest struct {
	PhotoURL string `json:"photoUrl" binding:"required,max=1000"`
}

func (s *Server) currentUser(c *gin.Context) (*models.User, bool) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	var user models.User
	if err := s.db.First(&user, sessionData.UserID).Error; err != nil {
		s.logger.Error().Err(err).Int64("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &user, true
}

// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/profile [get]
func (s *Server) getProfile(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary List the caller's reviews
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Review
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/my-reviews [get]
func (s *Server) listMyReviews(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var reviews []models.Review
	err := s.db.Preload("User").Preload("Restaurant").
		Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list user reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// @Summary Update profile photo
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfilePhotoRequest true "Photo URL"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/profile/photo [put]
func (s *Server) updateProfilePhoto(c *gin.Context) {
	var req ProfilePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	if err := s.db.Model(user).Update("profile_photo", req.PhotoURL).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update profile photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile photo"})
		return
	}
	user.ProfilePhoto = req.PhotoURL

	s.logger.Info().Int64("user_id", user.ID).Msg("Profile photo updated")

	c.JSON(http.StatusOK, user)
}
