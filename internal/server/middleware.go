package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/foodcritic-dev/foodcritic/internal/auth"
	"github.com/foodcritic-dev/foodcritic/internal/models"
)

const sessionKey = "foodcritic.session"

// authError is an authentication failure together with the message the
// client gets in the 401 body.
type authError struct {
	reason  string
	message string
}

func (e *authError) Error() string { return e.reason }

var (
	ErrMissingAuthHeader = &authError{"missing authorization header", "Missing authorization header"}
	ErrInvalidAuthFormat = &authError{"invalid authorization header format", "Invalid authorization header format"}
	ErrEmptyToken        = &authError{"empty token", "Empty token"}
	ErrInvalidToken      = &authError{"invalid token", "Invalid or expired token"}
	ErrUserNotFound      = &authError{"user not found", "User not found"}
)

// GetSessionData returns the session attached by the JWT middlewares.
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sessionData, ok := v.(*auth.SessionData)
	return sessionData, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidAuthFormat
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", statusCode).
		Msg(message)
	c.AbortWithStatusJSON(statusCode, gin.H{"error": message})
}

// authenticate resolves the bearer token on the request to the user it
// was issued for. Tokens of deleted users are rejected.
func authenticate(c *gin.Context, db *gorm.DB) (*auth.SessionData, error) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	var user models.User
	if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		return nil, errors.Join(ErrUserNotFound, err)
	}

	return &auth.SessionData{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// JWTAuthMiddleware rejects requests without a valid bearer token with 401
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, err := authenticate(c, db)
		if err != nil {
			message := ErrInvalidToken.message
			var ae *authError
			if errors.As(err, &ae) {
				message = ae.message
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		c.Set(sessionKey, sessionData)
		c.Next()
	}
}

// OptionalJWTMiddleware attaches the session when the request carries a
// valid token and lets every request through
func OptionalJWTMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, err := authenticate(c, db)
		switch {
		case err == nil:
			c.Set(sessionKey, sessionData)
		case !errors.Is(err, ErrMissingAuthHeader):
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Ignoring unusable token on public route")
		}
		c.Next()
	}
}
