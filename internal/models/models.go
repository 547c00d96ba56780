package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Roles a user account can hold
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// BaseModel provides common fields and auto-generated ULID for string-keyed models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a reviewer account
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:USER"`
	ProfilePhoto string    `json:"profilePhoto,omitempty"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime"`
}

// Restaurant is a reviewable place. Its ID doubles as the place id in search results.
type Restaurant struct {
	BaseModel
	Name             string   `json:"name" gorm:"not null"`
	Cuisine          string   `json:"cuisine" gorm:"not null"`
	Location         string   `json:"location,omitempty"`
	Address          string   `json:"address,omitempty" gorm:"size:500"`
	PhoneNumber      string   `json:"phoneNumber,omitempty" gorm:"size:20"`
	Website          string   `json:"website,omitempty" gorm:"size:500"`
	UserRatingsTotal int      `json:"userRatingsTotal,omitempty"`
	PriceLevel       int      `json:"priceLevel,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty" gorm:"size:1000"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	OpenNow          *bool    `json:"openNow,omitempty"`
	OpeningHoursJSON string   `json:"openingHoursJson,omitempty" gorm:"column:opening_hours;size:2000"`

	// Computed fields (populated by the handlers, not persisted)
	AverageRating *float64 `json:"averageRating,omitempty" gorm:"-"`
	ReviewCount   int      `json:"reviewCount,omitempty" gorm:"-"`
}

// Review is one user's rating of one restaurant. A user reviews a restaurant at most once.
type Review struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"-" gorm:"not null;uniqueIndex:idx_review_user_restaurant"`
	RestaurantID string    `json:"restaurantId" gorm:"not null;uniqueIndex:idx_review_user_restaurant"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment,omitempty" gorm:"size:1000"`
	ImageURL     string    `json:"imageUrl,omitempty" gorm:"size:500"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Relationships
	User       User        `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Restaurant *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Restaurant{}, &Review{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
