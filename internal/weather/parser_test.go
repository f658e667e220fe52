package weather

import (
	"testing"
	"time"

	"github.com/hyperjump/pedalcast/internal/models"
)

func TestParse_StructuredReport(t *testing.T) {
	doc := Parse("Temperature: 30°C, Humidity: 45%, Wind Speed: 12 km/h")

	if doc.Temperature != 30 {
		t.Errorf("temperature: got %f, want 30", doc.Temperature)
	}
	if doc.Humidity != 45 {
		t.Errorf("humidity: got %f, want 45", doc.Humidity)
	}
	if doc.WindSpeed != 12 {
		t.Errorf("windSpeed: got %f, want 12", doc.WindSpeed)
	}
	if len(doc.ExtractedFields) != 3 {
		t.Errorf("extracted fields: got %v, want 3 entries", doc.ExtractedFields)
	}
	if doc.Confidence != models.ConfidenceMedium {
		t.Errorf("confidence: got %s, want medium for score 3", doc.Confidence)
	}
}

func TestParse_EmptyTextYieldsDefaults(t *testing.T) {
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	doc := ParseAt("", now)

	if doc.Confidence != models.ConfidenceLow {
		t.Errorf("confidence: got %s, want low", doc.Confidence)
	}
	if len(doc.ExtractedFields) != 0 {
		t.Errorf("extracted fields: got %v, want none", doc.ExtractedFields)
	}
	if doc.Date != "2024-05-20" {
		t.Errorf("default date: got %s, want 2024-05-20", doc.Date)
	}
	if doc.Hour != 12 || doc.Temperature != 25 || doc.Humidity != 60 || doc.WindSpeed != 15 {
		t.Errorf("defaults: got hour=%d temp=%f hum=%f wind=%f", doc.Hour, doc.Temperature, doc.Humidity, doc.WindSpeed)
	}
	if doc.Season != "summer" || doc.Weather != "clear" || doc.IsHoliday {
		t.Errorf("defaults: got season=%s weather=%s holiday=%v", doc.Season, doc.Weather, doc.IsHoliday)
	}
}

func TestParse_OutOfRangeValueDiscarded(t *testing.T) {
	doc := Parse("Temperature: 150°C")
	if doc.Temperature != 25 {
		t.Errorf("temperature: got %f, want default 25 after out-of-range discard", doc.Temperature)
	}
	for _, f := range doc.ExtractedFields {
		if f == "temperature" {
			t.Error("temperature should not be recorded as extracted")
		}
	}
}

func TestParse_HighConfidence(t *testing.T) {
	text := "Date: 2024-03-15. Temperature: 30°C. Humidity: 45%. Wind speed: 12 km/h. Clear skies."
	doc := Parse(text)

	if doc.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence: got %s, want high (score 5)", doc.Confidence)
	}
	if doc.Date != "2024-03-15" {
		t.Errorf("date: got %s, want 2024-03-15", doc.Date)
	}
	if doc.Weather != "clear" {
		t.Errorf("weather: got %s, want clear", doc.Weather)
	}
}

func TestParse_DateAndHourRules(t *testing.T) {
	doc := Parse("date: 2024-12-25 hour: 17")
	if doc.Date != "2024-12-25" {
		t.Errorf("date: got %s", doc.Date)
	}
	if doc.Hour != 17 {
		t.Errorf("hour: got %d, want 17", doc.Hour)
	}

	// Invalid calendar date is rejected by time.Parse.
	doc = ParseAt("date: 2024-13-45", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if doc.Date != "2024-01-02" {
		t.Errorf("date: got %s, want default for invalid date", doc.Date)
	}

	// Out-of-range hour is rejected.
	doc = Parse("hour: 99")
	if doc.Hour != 12 {
		t.Errorf("hour: got %d, want default 12", doc.Hour)
	}
}

func TestParse_SeasonAndHoliday(t *testing.T) {
	doc := Parse("Festival day in December, expect winter conditions")
	if doc.Season != "winter" {
		t.Errorf("season: got %s, want winter", doc.Season)
	}
	if !doc.IsHoliday {
		t.Error("holiday: festival keyword should set isHoliday")
	}
}

func TestParse_HeavyRainBeforeRainy(t *testing.T) {
	doc := Parse("heavy rain expected all day")
	if doc.Weather != "heavy_rain" {
		t.Errorf("weather: got %s, want heavy_rain", doc.Weather)
	}

	doc = Parse("thunderstorm warning issued")
	if doc.Weather != "heavy_rain" {
		t.Errorf("weather: got %s, want heavy_rain for thunderstorm", doc.Weather)
	}

	doc = Parse("light drizzle through the evening")
	if doc.Weather != "rainy" {
		t.Errorf("weather: got %s, want rainy", doc.Weather)
	}
}

func TestParse_AlternatePatterns(t *testing.T) {
	doc := Parse("It reached 28 celsius with RH: 70% and wind 20 kmph")
	if doc.Temperature != 28 {
		t.Errorf("temperature: got %f, want 28", doc.Temperature)
	}
	if doc.Humidity != 70 {
		t.Errorf("humidity: got %f, want 70", doc.Humidity)
	}
	if doc.WindSpeed != 20 {
		t.Errorf("windSpeed: got %f, want 20", doc.WindSpeed)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Confidence
	}{
		{0, models.ConfidenceLow},
		{2.5, models.ConfidenceLow},
		{3, models.ConfidenceMedium},
		{4.5, models.ConfidenceMedium},
		{5, models.ConfidenceHigh},
		{7, models.ConfidenceHigh},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
