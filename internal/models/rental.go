// Package models defines core data structures for predictions, report
// extraction, bookings, and uploads.
package models

import "time"

// PredictionMode selects which regressor a request targets.
type PredictionMode string

const (
	// ModeDay predicts total rentals for a calendar day.
	ModeDay PredictionMode = "day"
	// ModeHour predicts rentals for a single hour.
	ModeHour PredictionMode = "hour"
)

// RawInput is the loosely-typed record a prediction request or a parsed
// report provides. All fields are optional; the normalizer substitutes
// defaults for anything missing.
type RawInput struct {
	Date        string   `json:"date,omitempty"`
	Season      string   `json:"season,omitempty"`
	Weather     string   `json:"weather,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"windSpeed,omitempty"`
	IsHoliday   bool     `json:"isHoliday,omitempty"`
	Hour        *int     `json:"hour,omitempty"`
}

// FeatureVector maps feature names to the numeric values a regressor
// was trained on.
type FeatureVector map[string]float64

// Values returns the vector's raw values aligned to order. Names the
// vector does not carry resolve to 0 so the slice always matches the
// model's expected column count.
func (fv FeatureVector) Values(order []string) []float32 {
	out := make([]float32, len(order))
	for i, name := range order {
		out[i] = float32(fv[name])
	}
	return out
}

// Confidence classifies how reliable a report extraction is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ExtractedDocument is the result of parsing a weather report: a
// RawInput-shaped record plus the extraction quality signal. The order
// of ExtractedFields follows rule evaluation order.
type ExtractedDocument struct {
	Date            string     `json:"date"`
	Hour            int        `json:"hour"`
	Temperature     float64    `json:"temperature"`
	Humidity        float64    `json:"humidity"`
	WindSpeed       float64    `json:"windSpeed"`
	Season          string     `json:"season"`
	Weather         string     `json:"weather"`
	IsHoliday       bool       `json:"isHoliday"`
	Confidence      Confidence `json:"confidence"`
	ExtractedFields []string   `json:"extracted_fields"`
}

// RawInput converts the extraction into the normalizer's input shape.
func (d *ExtractedDocument) RawInput() RawInput {
	temp, hum, wind := d.Temperature, d.Humidity, d.WindSpeed
	hour := d.Hour
	return RawInput{
		Date:        d.Date,
		Season:      d.Season,
		Weather:     d.Weather,
		Temperature: &temp,
		Humidity:    &hum,
		WindSpeed:   &wind,
		IsHoliday:   d.IsHoliday,
		Hour:        &hour,
	}
}

// BookingIntent is a parsed, actionable request to reserve a bike,
// derived from a free-text chat message.
type BookingIntent struct {
	City       string `json:"city"`
	BikeType   string `json:"bikeType"`
	Duration   int    `json:"duration"`
	TotalPrice int    `json:"totalPrice"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
}

// Booking is a persisted reservation.
type Booking struct {
	ID         string    `json:"id" db:"id"`
	UserEmail  string    `json:"-" db:"user_email"`
	City       string    `json:"city" db:"city"`
	BikeType   string    `json:"bikeType" db:"bike_type"`
	Duration   int       `json:"duration" db:"duration"`
	Date       string    `json:"date" db:"date"`
	StartTime  string    `json:"startTime" db:"start_time"`
	TotalPrice int       `json:"totalPrice" db:"total_price"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Prediction is a persisted forecast audit record. Input holds the
// request snapshot; it is stored as a JSON document and parsed back
// with encoding/json.
type Prediction struct {
	ID        string         `json:"id" db:"id"`
	UserEmail string         `json:"-" db:"user_email"`
	Type      PredictionMode `json:"type" db:"prediction_type"`
	Input     RawInput       `json:"input" db:"input_data"`
	Value     int            `json:"value" db:"prediction_value"`
	CreatedAt time.Time      `json:"date" db:"created_at"`
}

// Upload is a persisted report upload, deduplicated per user by
// content hash.
type Upload struct {
	ID        string             `json:"id" db:"id"`
	UserEmail string             `json:"-" db:"user_email"`
	FileHash  string             `json:"fileHash" db:"file_hash"`
	Filename  string             `json:"filename" db:"filename"`
	Extracted *ExtractedDocument `json:"extracted" db:"extracted_data"`
	Text      string             `json:"-" db:"-"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
}
