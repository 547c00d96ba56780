package models

import (
	"fmt"

	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

// SeedRestaurants are loaded into an empty database so search has something to find
var SeedRestaurants = []Restaurant{
	{Name: "Golden Gate Grill", Cuisine: "American", Location: "Marina", Address: "2100 Chestnut St, San Francisco, CA", PhoneNumber: "(415) 555-0101", PriceLevel: 2, UserRatingsTotal: 412, Latitude: ptr(37.8005), Longitude: ptr(-122.4382), OpenNow: ptr(true)},
	{Name: "Sakura House", Cuisine: "Japanese", Location: "Japantown", Address: "1581 Webster St, San Francisco, CA", PhoneNumber: "(415) 555-0102", PriceLevel: 3, UserRatingsTotal: 865, Latitude: ptr(37.7850), Longitude: ptr(-122.4316), OpenNow: ptr(true)},
	{Name: "Trattoria Rosa", Cuisine: "Italian", Location: "North Beach", Address: "550 Columbus Ave, San Francisco, CA", PhoneNumber: "(415) 555-0103", PriceLevel: 2, UserRatingsTotal: 1290, Latitude: ptr(37.7996), Longitude: ptr(-122.4087), OpenNow: ptr(false)},
	{Name: "Taqueria El Sol", Cuisine: "Mexican", Location: "Mission", Address: "2889 Mission St, San Francisco, CA", PhoneNumber: "(415) 555-0104", PriceLevel: 1, UserRatingsTotal: 2034, Latitude: ptr(37.7516), Longitude: ptr(-122.4184), OpenNow: ptr(true)},
	{Name: "Dragon Palace", Cuisine: "Chinese", Location: "Chinatown", Address: "838 Grant Ave, San Francisco, CA", PhoneNumber: "(415) 555-0105", PriceLevel: 2, UserRatingsTotal: 731, Latitude: ptr(37.7946), Longitude: ptr(-122.4058), OpenNow: ptr(true)},
	{Name: "Le Petit Bistro", Cuisine: "French", Location: "Hayes Valley", Address: "400 Hayes St, San Francisco, CA", PhoneNumber: "(415) 555-0106", PriceLevel: 4, UserRatingsTotal: 388, Latitude: ptr(37.7767), Longitude: ptr(-122.4233), OpenNow: ptr(false)},
	{Name: "Spice Route", Cuisine: "Indian", Location: "SoMa", Address: "1001 Folsom St, San Francisco, CA", PhoneNumber: "(415) 555-0107", PriceLevel: 2, UserRatingsTotal: 540, Latitude: ptr(37.7786), Longitude: ptr(-122.4059), OpenNow: ptr(true)},
	{Name: "Bangkok Corner", Cuisine: "Thai", Location: "Tenderloin", Address: "601 Larkin St, San Francisco, CA", PhoneNumber: "(415) 555-0108", PriceLevel: 1, UserRatingsTotal: 977, Latitude: ptr(37.7836), Longitude: ptr(-122.4177), OpenNow: ptr(true)},
	{Name: "Ocean Catch", Cuisine: "Seafood", Location: "Fisherman's Wharf", Address: "2800 Leavenworth St, San Francisco, CA", PhoneNumber: "(415) 555-0109", PriceLevel: 3, UserRatingsTotal: 2211, Latitude: ptr(37.8080), Longitude: ptr(-122.4177), OpenNow: ptr(true)},
	{Name: "Green Table", Cuisine: "Vegetarian", Location: "Inner Sunset", Address: "1300 9th Ave, San Francisco, CA", PhoneNumber: "(415) 555-0110", PriceLevel: 2, UserRatingsTotal: 264, Latitude: ptr(37.7637), Longitude: ptr(-122.4665), OpenNow: ptr(false)},
	{Name: "Seoul Kitchen", Cuisine: "Korean", Location: "Richmond", Address: "4500 Geary Blvd, San Francisco, CA", PhoneNumber: "(415) 555-0111", PriceLevel: 2, UserRatingsTotal: 603, Latitude: ptr(37.7808), Longitude: ptr(-122.4655), OpenNow: ptr(true)},
	{Name: "Castro Bakehouse", Cuisine: "Bakery", Location: "Castro", Address: "4001 18th St, San Francisco, CA", PhoneNumber: "(415) 555-0112", PriceLevel: 1, UserRatingsTotal: 145, Latitude: ptr(37.7609), Longitude: ptr(-122.4350), OpenNow: ptr(true)},
	{Name: "Embarcadero Steakhouse", Cuisine: "Steakhouse", Location: "Embarcadero", Address: "1 Ferry Building, San Francisco, CA", PhoneNumber: "(415) 555-0113", PriceLevel: 4, UserRatingsTotal: 1502, Latitude: ptr(37.7955), Longitude: ptr(-122.3937), OpenNow: ptr(false)},
	{Name: "Pho Saigon", Cuisine: "Vietnamese", Location: "Outer Sunset", Address: "2200 Irving St, San Francisco, CA", PhoneNumber: "(415) 555-0114", PriceLevel: 1, UserRatingsTotal: 820, Latitude: ptr(37.7636), Longitude: ptr(-122.4817), OpenNow: ptr(true)},
	{Name: "Athena Taverna", Cuisine: "Greek", Location: "Nob Hill", Address: "1200 California St, San Francisco, CA", PhoneNumber: "(415) 555-0115", PriceLevel: 3, UserRatingsTotal: 332, Latitude: ptr(37.7915), Longitude: ptr(-122.4140), OpenNow: ptr(true)},
}

// Seed inserts SeedRestaurants when the restaurants table is empty.
// It returns the number of rows inserted.
func Seed(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&Restaurant{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	restaurants := make([]Restaurant, len(SeedRestaurants))
	copy(restaurants, SeedRestaurants)
	if err := db.Create(&restaurants).Error; err != nil {
		return 0, fmt.Errorf("failed to seed restaurants: %w", err)
	}
	return len(restaurants), nil
}
