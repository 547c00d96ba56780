package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when InitializeJWT is given a zero ttl
const DefaultTokenTTL = 24 * time.Hour

var (
	mu        sync.RWMutex
	jwtSecret []byte
	tokenTTL  = DefaultTokenTTL
)

// ErrSecretNotInitialized is returned before InitializeJWT has been called
var ErrSecretNotInitialized = errors.New("JWT secret not initialized")

// JWTClaims represents the JWT token claims. Subject carries the username.
type JWTClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// InitializeJWT sets the signing secret and token lifetime
func InitializeJWT(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	jwtSecret = []byte(secret)
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tokenTTL = ttl
}

func signingState() ([]byte, time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret, tokenTTL
}

// GenerateToken creates a new HS256 token for a user that expires after the configured ttl
func GenerateToken(userID int64, username, role string) (string, error) {
	secret, ttl := signingState()
	if len(secret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        strconv.FormatInt(now.UnixNano(), 36),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token, including its expiry, and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	secret, _ := signingState()
	if len(secret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
