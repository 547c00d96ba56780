package places

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

const earthRadiusKm = 6371

// DefaultLocation is used whenever the user's position is unknown (San Francisco)
var DefaultLocation = Location{Latitude: 37.7749, Longitude: -122.4194}

// ErrPositionUnavailable is returned by locators that have nothing to offer
var ErrPositionUnavailable = errors.New("position unavailable")

// Location is a WGS84 coordinate pair
type Location struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Locator reports the user's current position
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// StaticLocator always reports the same position. A nil *StaticLocator has
// no position.
type StaticLocator struct {
	Position *Location
}

func (s *StaticLocator) Locate(ctx context.Context) (Location, error) {
	if s == nil || s.Position == nil {
		return Location{}, ErrPositionUnavailable
	}
	return *s.Position, nil
}

// Resolve asks the locator for the user's position and falls back to
// fallback when it cannot answer. fromUser reports whether the position is
// the user's own, which is what makes distance sorting meaningful.
func Resolve(ctx context.Context, locator Locator, fallback Location, log zerolog.Logger) (loc Location, fromUser bool) {
	if locator == nil {
		return fallback, false
	}

	loc, err := locator.Locate(ctx)
	if err != nil {
		if !errors.Is(err, ErrPositionUnavailable) {
			log.Debug().Err(err).Msg("Failed to get current position, using default location")
		}
		return fallback, false
	}
	return loc, true
}

// Distance returns the great-circle distance between a and b in kilometres
func Distance(a, b Location) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLng := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FormatDistance renders km as metres below one kilometre, else with one decimal
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
