package client

import "github.com/foodcritic-dev/foodcritic/internal/cli/session"

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       int64  `json:"id"`
}

// Profile builds the initial session profile from the auth response.
// The backend does not include role or creation time here; callers refresh
// the profile afterwards.
func (a *AuthResponse) Profile() session.UserProfile {
	return session.UserProfile{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     session.RoleUser,
	}
}

// Restaurant as stored by the backend
type Restaurant struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Cuisine          string   `json:"cuisine"`
	Location         string   `json:"location,omitempty"`
	Address          string   `json:"address,omitempty"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
	Website          string   `json:"website,omitempty"`
	UserRatingsTotal int      `json:"userRatingsTotal,omitempty"`
	PriceLevel       int      `json:"priceLevel,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	OpenNow          *bool    `json:"openNow,omitempty"`
	OpeningHoursJSON string   `json:"openingHoursJson,omitempty"`
	CreatedAt        string   `json:"createdAt"`
	AverageRating    *float64 `json:"averageRating,omitempty"`
	ReviewCount      int      `json:"reviewCount,omitempty"`
}

// Review of a restaurant by a user
type Review struct {
	ID           int64               `json:"id"`
	User         session.UserProfile `json:"user"`
	Restaurant   *Restaurant         `json:"restaurant,omitempty"`
	RestaurantID string              `json:"restaurantId"`
	Rating       int                 `json:"rating"`
	Comment      string              `json:"comment,omitempty"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	CreatedAt    string              `json:"createdAt"`
	UpdatedAt    string              `json:"updatedAt"`
}

// ReviewRequest creates or updates a review
type ReviewRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment,omitempty" validate:"max=1000"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,max=500"`
}

// UploadResponse describes a stored image
type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// PlacesSearchRequest searches the places provider around a point
type PlacesSearchRequest struct {
	Latitude      float64  `json:"latitude" validate:"latitude"`
	Longitude     float64  `json:"longitude" validate:"longitude"`
	Query         string   `json:"query,omitempty"`
	Radius        int      `json:"radius,omitempty" validate:"omitempty,min=1,max=50000"`
	Type          string   `json:"type,omitempty"`
	MinRating     *float64 `json:"minRating,omitempty" validate:"omitempty,min=0,max=5"`
	MaxPriceLevel *int     `json:"maxPriceLevel,omitempty" validate:"omitempty,min=0,max=4"`
	MinPriceLevel *int     `json:"minPriceLevel,omitempty" validate:"omitempty,min=0,max=4"`
	Cuisine       string   `json:"cuisine,omitempty"`
	PageToken     string   `json:"pageToken,omitempty"`
}

// LatLng is a coordinate pair as the places provider writes it
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry of a place
type Geometry struct {
	Location LatLng `json:"location"`
}

// PlacePhoto references a provider photo
type PlacePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Height         int    `json:"height"`
	Width          int    `json:"width"`
}

// OpeningPeriodTime is one end of an opening period
type OpeningPeriodTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// OpeningPeriod is one open/close pair
type OpeningPeriod struct {
	Open  OpeningPeriodTime `json:"open"`
	Close OpeningPeriodTime `json:"close"`
}

// OpeningHours of a place
type OpeningHours struct {
	OpenNow     *bool           `json:"open_now,omitempty"`
	Periods     []OpeningPeriod `json:"periods,omitempty"`
	WeekdayText []string        `json:"weekday_text,omitempty"`
}

// PlaceResult is one search hit
type PlaceResult struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Types            []string      `json:"types"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	PriceLevel       int           `json:"price_level,omitempty"`
	Vicinity         string        `json:"vicinity,omitempty"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	Geometry         *Geometry     `json:"geometry,omitempty"`
	Photos           []PlacePhoto  `json:"photos,omitempty"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
}

// PlacesSearchResponse is one page of search hits
type PlacesSearchResponse struct {
	Results       []PlaceResult `json:"results"`
	NextPageToken string        `json:"next_page_token,omitempty"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// Err returns the provider failure, if any. ZERO_RESULTS is not a failure.
func (r *PlacesSearchResponse) Err() error {
	return placesStatusErr(r.Status, r.ErrorMessage)
}

// PlaceReview is a review shown by the places provider
type PlaceReview struct {
	AuthorName              string `json:"author_name"`
	AuthorURL               string `json:"author_url,omitempty"`
	ProfilePhotoURL         string `json:"profile_photo_url,omitempty"`
	Rating                  int    `json:"rating"`
	RelativeTimeDescription string `json:"relative_time_description"`
	Text                    string `json:"text"`
	Time                    int64  `json:"time"`
}

// PlaceDetails is the full record of one place
type PlaceDetails struct {
	PlaceID              string        `json:"place_id"`
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address,omitempty"`
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	Website              string        `json:"website,omitempty"`
	Rating               float64       `json:"rating,omitempty"`
	UserRatingsTotal     int           `json:"user_ratings_total,omitempty"`
	PriceLevel           int           `json:"price_level,omitempty"`
	Types                []string      `json:"types"`
	Geometry             *Geometry     `json:"geometry,omitempty"`
	Photos               []PlacePhoto  `json:"photos,omitempty"`
	OpeningHours         *OpeningHours `json:"opening_hours,omitempty"`
	Reviews              []PlaceReview `json:"reviews,omitempty"`
}

// PlaceDetailsResponse wraps PlaceDetails with the provider status
type PlaceDetailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// Err returns the provider failure, if any
func (r *PlaceDetailsResponse) Err() error {
	return placesStatusErr(r.Status, r.ErrorMessage)
}

// StructuredFormatting splits a suggestion into main and secondary text
type StructuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// PlaceSuggestion is one autocomplete prediction
type PlaceSuggestion struct {
	PlaceID              string                `json:"place_id"`
	Description          string                `json:"description"`
	StructuredFormatting *StructuredFormatting `json:"structured_formatting,omitempty"`
}

// PlaceSuggestionsRequest asks for autocomplete predictions
type PlaceSuggestionsRequest struct {
	Input     string   `json:"input" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Radius    int      `json:"radius,omitempty"`
	Types     string   `json:"types,omitempty"`
}

// PlaceSuggestionsResponse lists predictions
type PlaceSuggestionsResponse struct {
	Predictions  []PlaceSuggestion `json:"predictions"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// Err returns the provider failure, if any
func (r *PlaceSuggestionsResponse) Err() error {
	return placesStatusErr(r.Status, r.ErrorMessage)
}
