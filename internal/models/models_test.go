package models

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSeedOnlyFillsEmptyTable(t *testing.T) {
	db := openTestDB(t)

	n, err := Seed(db)
	require.NoError(t, err)
	assert.Equal(t, len(SeedRestaurants), n)

	n, err = Seed(db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, db.Model(&Restaurant{}).Count(&count).Error)
	assert.Equal(t, int64(len(SeedRestaurants)), count)

	for _, r := range SeedRestaurants {
		assert.Empty(t, r.ID, "seeding must not mutate the template")
	}
}

func TestRestaurantGetsULID(t *testing.T) {
	db := openTestDB(t)

	r := &Restaurant{Name: "Corner Cafe", Cuisine: "Cafe"}
	require.NoError(t, db.Create(r).Error)
	assert.Len(t, r.ID, 26)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestOneReviewPerUserAndRestaurant(t *testing.T) {
	db := openTestDB(t)

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: RoleUser}
	require.NoError(t, db.Create(user).Error)
	restaurant := &Restaurant{Name: "Corner Cafe", Cuisine: "Cafe"}
	require.NoError(t, db.Create(restaurant).Error)

	first := &Review{UserID: user.ID, RestaurantID: restaurant.ID, Rating: 4}
	require.NoError(t, db.Create(first).Error)
	assert.NotZero(t, first.ID)

	second := &Review{UserID: user.ID, RestaurantID: restaurant.ID, Rating: 2}
	assert.Error(t, db.Create(second).Error)
}

func TestUniqueUsername(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&User{Username: "alice", Email: "a@example.com", PasswordHash: "x"}).Error)
	assert.Error(t, db.Create(&User{Username: "alice", Email: "b@example.com", PasswordHash: "x"}).Error)

	var user User
	require.NoError(t, db.First(&user, "username = ?", "alice").Error)
	assert.Equal(t, RoleUser, user.Role, "role defaults to USER")
}
