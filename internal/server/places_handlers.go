package server

import (
	"encoding/base64"
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodcritic-dev/foodcritic/internal/models"
)

// Places stand-in. Answers in the provider's shape (snake_case fields and a
// status string) from the restaurants table.

const (
	placesPageSize     = 20
	defaultPlaceRadius = 25000
	maxSuggestions     = 5
	maxPlaceReviews    = 5
	earthRadiusM       = 6371000

	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusInvalidRequest = "INVALID_REQUEST"
	statusNotFound       = "NOT_FOUND"
)

// PlacesSearchRequest searches around a point
type PlacesSearchRequest struct {
	Latitude      float64  `json:"latitude" binding:"latitude"`
	Longitude     float64  `json:"longitude" binding:"longitude"`
	Query         string   `json:"query"`
	Radius        int      `json:"radius" binding:"omitempty,min=1,max=50000"`
	Type          string   `json:"type"`
	MinRating     *float64 `json:"minRating" binding:"omitempty,min=0,max=5"`
	MaxPriceLevel *int     `json:"maxPriceLevel" binding:"omitempty,min=0,max=4"`
	MinPriceLevel *int     `json:"minPriceLevel" binding:"omitempty,min=0,max=4"`
	Cuisine       string   `json:"cuisine"`
	PageToken     string   `json:"pageToken"`
}

// PlaceSuggestionsRequest asks for autocomplete predictions
type PlaceSuggestionsRequest struct {
	Input     string   `json:"input" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    int      `json:"radius"`
	Types     string   `json:"types"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type placePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Height         int    `json:"height"`
	Width          int    `json:"width"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}

type placeResult struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Types            []string      `json:"types"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	PriceLevel       int           `json:"price_level,omitempty"`
	Vicinity         string        `json:"vicinity,omitempty"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	Geometry         *geometry     `json:"geometry,omitempty"`
	Photos           []placePhoto  `json:"photos,omitempty"`
	OpeningHours     *openingHours `json:"opening_hours,omitempty"`
}

type placesSearchResponse struct {
	Results       []placeResult `json:"results"`
	NextPageToken string        `json:"next_page_token,omitempty"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

type placeReview struct {
	AuthorName              string `json:"author_name"`
	ProfilePhotoURL         string `json:"profile_photo_url,omitempty"`
	Rating                  int    `json:"rating"`
	RelativeTimeDescription string `json:"relative_time_description"`
	Text                    string `json:"text"`
	Time                    int64  `json:"time"`
}

type placeDetails struct {
	placeResult
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	Website              string        `json:"website,omitempty"`
	Reviews              []placeReview `json:"reviews,omitempty"`
}

type placeDetailsResponse struct {
	Result       *placeDetails `json:"result,omitempty"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type structuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

type placeSuggestion struct {
	PlaceID              string                `json:"place_id"`
	Description          string                `json:"description"`
	StructuredFormatting *structuredFormatting `json:"structured_formatting,omitempty"`
}

type placeSuggestionsResponse struct {
	Predictions  []placeSuggestion `json:"predictions"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// distanceMeters is the haversine distance between two points
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func encodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte("offset:" + strconv.Itoa(offset)))
}

func decodePageToken(token string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, err
	}
	value, ok := strings.CutPrefix(string(raw), "offset:")
	if !ok {
		return 0, errors.New("malformed page token")
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, errors.New("malformed page token")
	}
	return offset, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func placeTypes(r *models.Restaurant) []string {
	types := []string{"restaurant", "food"}
	if r.Cuisine != "" {
		types = append(types, strings.ToLower(strings.ReplaceAll(r.Cuisine, " ", "_")))
	}
	return types
}

func toPlaceResult(r *models.Restaurant, stats map[string]ratingStat) placeResult {
	result := placeResult{
		PlaceID:          r.ID,
		Name:             r.Name,
		Types:            placeTypes(r),
		UserRatingsTotal: r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
		Vicinity:         r.Address,
		FormattedAddress: r.Address,
	}
	if stat, ok := stats[r.ID]; ok {
		result.Rating = math.Round(stat.Average*10) / 10
		result.UserRatingsTotal += stat.ReviewCount
	}
	if r.Latitude != nil && r.Longitude != nil {
		result.Geometry = &geometry{Location: latLng{Lat: *r.Latitude, Lng: *r.Longitude}}
	}
	if r.ImageURL != "" {
		result.Photos = []placePhoto{{PhotoReference: r.ID, Width: 1200, Height: 800}}
	}
	if r.OpenNow != nil {
		result.OpeningHours = &openingHours{OpenNow: r.OpenNow}
	}
	return result
}

// matchesSearch applies the request filters except the radius
func matchesSearch(req *PlacesSearchRequest, result *placeResult, r *models.Restaurant) bool {
	if req.Type != "" && !slices.Contains(result.Types, req.Type) {
		return false
	}
	if req.Cuisine != "" && !strings.EqualFold(r.Cuisine, req.Cuisine) {
		return false
	}
	if req.Query != "" &&
		!containsFold(r.Name, req.Query) &&
		!containsFold(r.Cuisine, req.Query) &&
		!containsFold(r.Location, req.Query) {
		return false
	}
	if req.MinRating != nil && result.Rating < *req.MinRating {
		return false
	}
	if req.MinPriceLevel != nil && r.PriceLevel < *req.MinPriceLevel {
		return false
	}
	if req.MaxPriceLevel != nil && r.PriceLevel > *req.MaxPriceLevel {
		return false
	}
	return true
}

// @Summary Search places
// @Description Restaurants within radius of a point, nearest first, 20 per page
// @Tags places
// @Accept json
// @Produce json
// @Param request body PlacesSearchRequest true "Search"
// @Success 200 {object} placesSearchResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/google-places/search [post]
func (s *Server) searchPlaces(c *gin.Context) {
	var req PlacesSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offset := 0
	if req.PageToken != "" {
		var err error
		if offset, err = decodePageToken(req.PageToken); err != nil {
			c.JSON(http.StatusOK, placesSearchResponse{
				Results:      []placeResult{},
				Status:       statusInvalidRequest,
				ErrorMessage: "Invalid page token",
			})
			return
		}
	}

	radius := req.Radius
	if radius == 0 {
		radius = defaultPlaceRadius
	}

	var restaurants []models.Restaurant
	if err := s.db.Where("latitude IS NOT NULL AND longitude IS NOT NULL").Find(&restaurants).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load restaurants for search")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stats, err := s.ratingStats()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate ratings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	type hit struct {
		result   placeResult
		distance float64
	}
	var hits []hit
	for i := range restaurants {
		r := &restaurants[i]
		distance := distanceMeters(req.Latitude, req.Longitude, *r.Latitude, *r.Longitude)
		if distance > float64(radius) {
			continue
		}
		result := toPlaceResult(r, stats)
		if !matchesSearch(&req, &result, r) {
			continue
		}
		hits = append(hits, hit{result: result, distance: distance})
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		default:
			return strings.Compare(a.result.Name, b.result.Name)
		}
	})

	resp := placesSearchResponse{Results: []placeResult{}, Status: statusOK}
	if len(hits) == 0 {
		resp.Status = statusZeroResults
		c.JSON(http.StatusOK, resp)
		return
	}

	end := min(offset+placesPageSize, len(hits))
	for _, h := range hits[min(offset, end):end] {
		resp.Results = append(resp.Results, h.result)
	}
	if end < len(hits) {
		resp.NextPageToken = encodePageToken(end)
	}

	s.logger.Debug().
		Int("matches", len(hits)).
		Int("offset", offset).
		Int("returned", len(resp.Results)).
		Msg("Places search")

	c.JSON(http.StatusOK, resp)
}

// @Summary Place details
// @Tags places
// @Produce json
// @Param placeId path string true "Place ID"
// @Success 200 {object} placeDetailsResponse
// @Router /api/google-places/details/{placeId} [get]
func (s *Server) placeDetails(c *gin.Context) {
	var restaurant models.Restaurant
	if err := s.db.Where("id = ?", c.Param("placeId")).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, placeDetailsResponse{Status: statusNotFound, ErrorMessage: "Place not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find place")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stats, err := s.ratingStats(restaurant.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate ratings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var reviews []models.Review
	if err := s.db.Preload("User").
		Where("restaurant_id = ?", restaurant.ID).
		Order("created_at DESC").
		Limit(maxPlaceReviews).
		Find(&reviews).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load place reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := &placeDetails{
		placeResult:          toPlaceResult(&restaurant, stats),
		FormattedPhoneNumber: restaurant.PhoneNumber,
		Website:              restaurant.Website,
	}
	for _, review := range reviews {
		details.Reviews = append(details.Reviews, placeReview{
			AuthorName:              review.User.Username,
			ProfilePhotoURL:         review.User.ProfilePhoto,
			Rating:                  review.Rating,
			RelativeTimeDescription: humanize.Time(review.CreatedAt),
			Text:                    review.Comment,
			Time:                    review.CreatedAt.Unix(),
		})
	}

	c.JSON(http.StatusOK, placeDetailsResponse{Result: details, Status: statusOK})
}

// @Summary Place photo URL
// @Description Resolves a photo reference to an image URL
// @Tags places
// @Produce json
// @Param photoReference query string true "Photo reference"
// @Param maxWidth query int false "Maximum width" default(400)
// @Success 200 {string} string
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/google-places/photo [get]
func (s *Server) placePhoto(c *gin.Context) {
	reference := c.Query("photoReference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photoReference is required"})
		return
	}
	if raw := c.Query("maxWidth"); raw != "" {
		if width, err := strconv.Atoi(raw); err != nil || width < 1 || width > 1600 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxWidth must be between 1 and 1600"})
			return
		}
	}

	var restaurant models.Restaurant
	err := s.db.Where("id = ?", reference).First(&restaurant).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Msg("Failed to find photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err != nil || restaurant.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	c.JSON(http.StatusOK, restaurant.ImageURL)
}

// @Summary Place suggestions
// @Description Autocompletes restaurant names, nearest first when a position is given
// @Tags places
// @Accept json
// @Produce json
// @Param request body PlaceSuggestionsRequest true "Input"
// @Success 200 {object} placeSuggestionsResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/google-places/suggestions [post]
func (s *Server) placeSuggestions(c *gin.Context) {
	var req PlaceSuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var restaurants []models.Restaurant
	if err := s.db.Order("name ASC").Find(&restaurants).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load restaurants for suggestions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	hasOrigin := req.Latitude != nil && req.Longitude != nil
	distance := func(r *models.Restaurant) float64 {
		if !hasOrigin || r.Latitude == nil || r.Longitude == nil {
			return math.Inf(1)
		}
		return distanceMeters(*req.Latitude, *req.Longitude, *r.Latitude, *r.Longitude)
	}

	var matches []*models.Restaurant
	for i := range restaurants {
		r := &restaurants[i]
		if !containsFold(r.Name, req.Input) {
			continue
		}
		if req.Radius > 0 && hasOrigin && distance(r) > float64(req.Radius) {
			continue
		}
		matches = append(matches, r)
	}
	if hasOrigin {
		slices.SortStableFunc(matches, func(a, b *models.Restaurant) int {
			left, right := distance(a), distance(b)
			switch {
			case left < right:
				return -1
			case left > right:
				return 1
			default:
				return 0
			}
		})
	}

	resp := placeSuggestionsResponse{Predictions: []placeSuggestion{}, Status: statusOK}
	for _, r := range matches[:min(len(matches), maxSuggestions)] {
		description := r.Name
		if r.Address != "" {
			description += ", " + r.Address
		}
		resp.Predictions = append(resp.Predictions, placeSuggestion{
			PlaceID:     r.ID,
			Description: description,
			StructuredFormatting: &structuredFormatting{
				MainText:      r.Name,
				SecondaryText: r.Address,
			},
		})
	}
	if len(resp.Predictions) == 0 {
		resp.Status = statusZeroResults
	}

	c.JSON(http.StatusOK, resp)
}
