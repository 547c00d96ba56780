package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	maxPriceLevel = 4
	maxStars      = 5
	dateLayout    = "January 2, 2006"
)

// Rating renders a rating with one decimal
func Rating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 1, 64)
}

// Price renders a price level as dollar signs, capped at four. Levels of zero
// or less have no price.
func Price(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("$", min(level, maxPriceLevel))
}

// Stars renders a rating as five filled or empty stars
func Stars(rating float64) string {
	filled := int(math.Round(rating))
	filled = max(0, min(filled, maxStars))
	return strings.Repeat("★", filled) + strings.Repeat("☆", maxStars-filled)
}

// Date renders a backend timestamp as "January 2, 2006". Values that do not
// parse are returned as given.
func Date(value string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(dateLayout)
		}
	}
	return value
}
