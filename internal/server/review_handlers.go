package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodcritic-dev/foodcritic/internal/models"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// ReviewRequest creates or updates a review
type ReviewRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"max=1000"`
	ImageURL string `json:"imageUrl" binding:"max=500"`
}

// @Summary List reviews of a restaurant
// @Tags reviews
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {array} models.Review
// @Router /api/restaurants/{id}/reviews [get]
func (s *Server) listRestaurantReviews(c *gin.Context) {
	var reviews []models.Review
	err := s.db.Preload("User").
		Where("restaurant_id = ?", c.Param("id")).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// @Summary Get the caller's review of a restaurant
// @Description 404 when the caller has not reviewed the restaurant or is anonymous
// @Tags reviews
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} map[string]interface{}
// @Router /api/restaurants/{id}/reviews/my-review [get]
func (s *Server) getMyReview(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var review models.Review
	err := s.db.Preload("User").
		Where("restaurant_id = ? AND user_id = ?", c.Param("id"), sessionData.UserID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// @Summary Review a restaurant
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param request body ReviewRequest true "Review"
// @Success 200 {object} models.Review
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/restaurants/{id}/reviews [post]
func (s *Server) createReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restaurant, ok := s.findRestaurant(c, c.Param("id"))
	if !ok {
		return
	}

	sessionData, _ := GetSessionData(c)

	var existing int64
	if err := s.db.Model(&models.Review{}).
		Where("restaurant_id = ? AND user_id = ?", restaurant.ID, sessionData.UserID).
		Count(&existing).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this restaurant"})
		return
	}

	review := &models.Review{
		UserID:       sessionData.UserID,
		RestaurantID: restaurant.ID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		ImageURL:     req.ImageURL,
	}
	if err := s.db.Create(review).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	s.logger.Info().
		Int64("review_id", review.ID).
		Str("restaurant_id", restaurant.ID).
		Int64("user_id", sessionData.UserID).
		Msg("Review created")

	s.respondWithReview(c, review.ID)
}

// findOwnReview loads a review of the restaurant in the path and checks the
// caller wrote it, writing 404 or 403 otherwise
func (s *Server) findOwnReview(c *gin.Context) (*models.Review, bool) {
	reviewID, err := strconv.ParseInt(c.Param("reviewId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review id"})
		return nil, false
	}

	var review models.Review
	if err := s.db.Where("id = ? AND restaurant_id = ?", reviewID, c.Param("id")).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	sessionData, _ := GetSessionData(c)
	if review.UserID != sessionData.UserID {
		respondWithError(c, s.logger, http.StatusForbidden, errors.New("not review owner"), "You can only modify your own reviews")
		return nil, false
	}

	return &review, true
}

// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param reviewId path int true "Review ID"
// @Param request body ReviewRequest true "Review"
// @Success 200 {object} models.Review
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/restaurants/{id}/reviews/{reviewId} [put]
func (s *Server) updateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, ok := s.findOwnReview(c)
	if !ok {
		return
	}

	updates := map[string]any{
		"rating":  req.Rating,
		"comment": req.Comment,
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if err := s.db.Model(review).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	s.respondWithReview(c, review.ID)
}

// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param reviewId path int true "Review ID"
// @Success 200
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/restaurants/{id}/reviews/{reviewId} [delete]
func (s *Server) deleteReview(c *gin.Context) {
	review, ok := s.findOwnReview(c)
	if !ok {
		return
	}

	if err := s.db.Delete(review).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	s.logger.Info().Int64("review_id", review.ID).Msg("Review deleted")
	c.Status(http.StatusOK)
}

// @Summary Most recent reviews across all restaurants
// @Tags reviews
// @Produce json
// @Param limit query int false "Maximum number of reviews" default(50)
// @Success 200 {array} models.Review
// @Router /api/reviews/recent [get]
func (s *Server) listRecentReviews(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRecentLimit)
	}

	var reviews []models.Review
	err := s.db.Preload("User").Preload("Restaurant").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list recent reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (s *Server) respondWithReview(c *gin.Context, id int64) {
	var review models.Review
	if err := s.db.Preload("User").Preload("Restaurant").First(&review, id).Error; err != nil {
		s.logger.Error().Err(err).Int64("review_id", id).Msg("Failed to reload review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, review)
}
