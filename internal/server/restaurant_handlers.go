package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodcritic-dev/foodcritic/internal/models"
)

type ratingStat struct {
	RestaurantID string
	Average      float64
	ReviewCount  int
}

// ratingStats aggregates review ratings per restaurant. No ids means all restaurants.
func (s *Server) ratingStats(ids ...string) (map[string]ratingStat, error) {
	query := s.db.Model(&models.Review{}).
		Select("restaurant_id, AVG(rating) AS average, COUNT(*) AS review_count").
		Group("restaurant_id")
	if len(ids) > 0 {
		query = query.Where("restaurant_id IN ?", ids)
	}

	var rows []ratingStat
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make(map[string]ratingStat, len(rows))
	for _, row := range rows {
		stats[row.RestaurantID] = row
	}
	return stats, nil
}

func applyStats(restaurants []models.Restaurant, stats map[string]ratingStat) {
	for i := range restaurants {
		stat, ok := stats[restaurants[i].ID]
		if !ok {
			continue
		}
		avg := stat.Average
		restaurants[i].AverageRating = &avg
		restaurants[i].ReviewCount = stat.ReviewCount
	}
}

// findRestaurant loads a restaurant and writes a 404 when it does not exist
func (s *Server) findRestaurant(c *gin.Context, id string) (*models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := s.db.Where("id = ?", id).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Str("restaurant_id", id).Msg("Failed to find restaurant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &restaurant, true
}

// @Summary List restaurants
// @Tags restaurants
// @Produce json
// @Success 200 {array} models.Restaurant
// @Router /api/restaurants [get]
func (s *Server) listRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := s.db.Order("name ASC").Find(&restaurants).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list restaurants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stats, err := s.ratingStats()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate ratings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	applyStats(restaurants, stats)

	c.JSON(http.StatusOK, restaurants)
}

// @Summary Get restaurant
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} map[string]interface{}
// @Router /api/restaurants/{id} [get]
func (s *Server) getRestaurant(c *gin.Context) {
	restaurant, ok := s.findRestaurant(c, c.Param("id"))
	if !ok {
		return
	}

	stats, err := s.ratingStats(restaurant.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate ratings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	one := []models.Restaurant{*restaurant}
	applyStats(one, stats)

	c.JSON(http.StatusOK, one[0])
}
