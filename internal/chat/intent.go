// Package chat implements the booking assistant: keyword shortcuts, a
// free-text booking intent parser, and an LLM fallback.
package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/pedalcast/internal/models"
)

// Canonical bike categories and their per-hour prices.
const (
	BikeScooter = "Scooter"
	BikeSports  = "Sports Bike"
	BikeCruiser = "Cruiser"
)

// PriceTable maps bike category to unit price per hour.
var PriceTable = map[string]int{
	BikeScooter: 200,
	BikeSports:  500,
	BikeCruiser: 700,
}

var (
	cityPattern     = regexp.MustCompile(`\b(mumbai|delhi|bangalore|hyderabad|pune)\b`)
	bikePattern     = regexp.MustCompile(`\b(scooter|sports? bike|cruiser)\b`)
	durationPattern = regexp.MustCompile(`(\d+)\s*(?:hour|hr|h\b)`)
)

var greetingWords = []string{"hello", "hi", "hey"}
var priceWords = []string{"price", "cost", "rate"}

// ParseIntent extracts a booking intent from a free-text message. It
// returns false when any of city, bike category, or duration cannot be
// identified; it never fails.
func ParseIntent(message string) (*models.BookingIntent, bool) {
	return ParseIntentAt(message, time.Now())
}

// ParseIntentAt is ParseIntent with an explicit time for the booking's
// date and start time.
func ParseIntentAt(message string, now time.Time) (*models.BookingIntent, bool) {
	lower := strings.ToLower(message)

	cityMatch := cityPattern.FindStringSubmatch(lower)
	bikeMatch := bikePattern.FindStringSubmatch(lower)
	durationMatch := durationPattern.FindStringSubmatch(lower)
	if cityMatch == nil || bikeMatch == nil || durationMatch == nil {
		return nil, false
	}

	duration, err := strconv.Atoi(durationMatch[1])
	if err != nil || duration <= 0 {
		return nil, false
	}

	bikeType := normalizeBike(bikeMatch[1])
	return &models.BookingIntent{
		City:       titleCase(cityMatch[1]),
		BikeType:   bikeType,
		Duration:   duration,
		TotalPrice: PriceTable[bikeType] * duration,
		Date:       now.Format("2006-01-02"),
		StartTime:  now.Format("15:04"),
	}, true
}

// normalizeBike maps a matched bike keyword to its canonical category:
// any "sport" variant to Sports Bike, "scooter" to Scooter, anything
// else recognized to Cruiser.
func normalizeBike(raw string) string {
	switch {
	case strings.Contains(raw, "sport"):
		return BikeSports
	case strings.Contains(raw, "scooter"):
		return BikeScooter
	default:
		return BikeCruiser
	}
}

// IsGreeting reports whether the message is a plain greeting.
func IsGreeting(message string) bool {
	return containsAny(strings.ToLower(message), greetingWords)
}

// IsPriceInquiry reports whether the message asks about prices.
func IsPriceInquiry(message string) bool {
	return containsAny(strings.ToLower(message), priceWords)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
