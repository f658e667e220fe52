// Package weather extracts prediction features from unstructured report
// text using an ordered list of pattern rules with weighted confidence
// scoring.
package weather

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/pedalcast/internal/models"
)

// Confidence thresholds. score >= high -> high, >= medium -> medium,
// else low. These are the only user-visible extraction quality signal.
const (
	highThreshold   = 5.0
	mediumThreshold = 3.0
)

// rule is one extraction step. Rules run in declared order against the
// lower-cased text; a successful match applies the value to the
// document, records the field name, and adds weight to the confidence
// score. A match outside a rule's accepted range counts as no match.
type rule struct {
	field  string
	weight float64
	match  func(text string, doc *models.ExtractedDocument) bool
}

var tempPatterns = compileAll(
	`temperature[:\s]*(\d+\.?\d*)\s*[°c]`,
	`temp[:\s]*(\d+\.?\d*)\s*[°c]`,
	`(\d+\.?\d*)\s*[°c]`,
	`(\d+\.?\d*)\s*celsius`,
)

var humidityPatterns = compileAll(
	`humidity[:\s]*(\d+\.?\d*)\s*%`,
	`relative\s*humidity[:\s]*(\d+)`,
	`rh[:\s]*(\d+)\s*%`,
)

var windPatterns = compileAll(
	`wind\s*speed[:\s]*(\d+\.?\d*)\s*(?:km/h|kmph|kph)`,
	`wind[:\s]*(\d+\.?\d*)\s*(?:km/h|kmph|kph)`,
)

var datePattern = regexp.MustCompile(`date[:\s]*(\d{4}-\d{2}-\d{2})`)
var hourPattern = regexp.MustCompile(`hour[:\s]*(\d{1,2})`)

// keywordSet maps a canonical label to trigger keywords. Sets are
// scanned in order; the first set with any keyword present wins.
type keywordSet struct {
	label    string
	keywords []string
}

var seasonSets = []keywordSet{
	{"spring", []string{"spring", "march", "april", "may"}},
	{"summer", []string{"summer", "june", "july", "august"}},
	{"fall", []string{"fall", "autumn", "september", "october", "november"}},
	{"winter", []string{"winter", "december", "january", "february"}},
}

// Most specific category first: "heavy rain"/"thunderstorm"/"storm"
// must map to heavy_rain before plain "rain" can claim rainy.
var weatherSets = []keywordSet{
	{"clear", []string{"clear", "sunny", "bright"}},
	{"cloudy", []string{"cloudy", "overcast", "clouds"}},
	{"heavy_rain", []string{"heavy rain", "thunderstorm", "storm"}},
	{"rainy", []string{"rain", "rainy", "drizzle"}},
}

var holidayKeywords = []string{"holiday", "festival"}

// rules is the single ordered pass over the document. Field order here
// is also the order of ExtractedFields in the result.
var rules = []rule{
	{"temperature", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		v, ok := firstNumber(tempPatterns, text, -10, 50)
		if ok {
			doc.Temperature = v
		}
		return ok
	}},
	{"humidity", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		v, ok := firstNumber(humidityPatterns, text, 0, 100)
		if ok {
			doc.Humidity = v
		}
		return ok
	}},
	{"windSpeed", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		v, ok := firstNumber(windPatterns, text, 0, 200)
		if ok {
			doc.WindSpeed = v
		}
		return ok
	}},
	{"date", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		m := datePattern.FindStringSubmatch(text)
		if m == nil {
			return false
		}
		if _, err := time.Parse("2006-01-02", m[1]); err != nil {
			return false
		}
		doc.Date = m[1]
		return true
	}},
	{"hour", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		m := hourPattern.FindStringSubmatch(text)
		if m == nil {
			return false
		}
		h, err := strconv.Atoi(m[1])
		if err != nil || h < 0 || h > 23 {
			return false
		}
		doc.Hour = h
		return true
	}},
	{"season", 0.5, func(text string, doc *models.ExtractedDocument) bool {
		label, ok := firstKeywordSet(seasonSets, text)
		if ok {
			doc.Season = label
		}
		return ok
	}},
	{"weather", 1.0, func(text string, doc *models.ExtractedDocument) bool {
		label, ok := firstKeywordSet(weatherSets, text)
		if ok {
			doc.Weather = label
		}
		return ok
	}},
	{"holiday", 0.5, func(text string, doc *models.ExtractedDocument) bool {
		for _, kw := range holidayKeywords {
			if strings.Contains(text, kw) {
				doc.IsHoliday = true
				return true
			}
		}
		return false
	}},
}

// Parse extracts a RawInput-shaped record from report text. It is
// total: unparseable text yields an all-default low-confidence result.
func Parse(text string) *models.ExtractedDocument {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an explicit reference time for date defaults.
func ParseAt(text string, now time.Time) *models.ExtractedDocument {
	doc := defaults(now)
	lower := strings.ToLower(text)

	score := 0.0
	for _, r := range rules {
		if r.match(lower, doc) {
			doc.ExtractedFields = append(doc.ExtractedFields, r.field)
			score += r.weight
		}
	}
	doc.Confidence = Classify(score)
	return doc
}

// Classify maps a confidence score to its classification.
func Classify(score float64) models.Confidence {
	switch {
	case score >= highThreshold:
		return models.ConfidenceHigh
	case score >= mediumThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func defaults(now time.Time) *models.ExtractedDocument {
	return &models.ExtractedDocument{
		Date:            now.Format("2006-01-02"),
		Hour:            12,
		Temperature:     25,
		Humidity:        60,
		WindSpeed:       15,
		Season:          "summer",
		Weather:         "clear",
		IsHoliday:       false,
		Confidence:      models.ConfidenceLow,
		ExtractedFields: []string{},
	}
}

// firstNumber tries patterns in priority order and returns the first
// captured number within [min, max]. Out-of-range matches are
// discarded, which also discards any later pattern for the field.
func firstNumber(patterns []*regexp.Regexp, text string, min, max float64) (float64, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v >= min && v <= max {
			return v, true
		}
		return 0, false
	}
	return 0, false
}

func firstKeywordSet(sets []keywordSet, text string) (string, bool) {
	for _, set := range sets {
		for _, kw := range set.keywords {
			if strings.Contains(text, kw) {
				return set.label, true
			}
		}
	}
	return "", false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
