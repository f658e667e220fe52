// Package features maps loosely-typed rental inputs onto the numeric
// feature vectors the pretrained regressors expect.
package features

import (
	"strings"
	"time"

	"github.com/hyperjump/pedalcast/internal/models"
)

// Defaults substituted for absent input fields.
const (
	defaultSeason      = 2 // summer
	defaultWeather     = 1 // clear
	defaultTemperature = 20.0
	defaultHumidity    = 50.0
	defaultWindSpeed   = 10.0
	defaultHour        = 12
)

var seasonMap = map[string]float64{
	"spring": 1,
	"summer": 2,
	"fall":   3,
	"autumn": 3,
	"winter": 4,
}

var weatherMap = map[string]float64{
	"clear":      1,
	"cloudy":     2,
	"mist":       2,
	"rainy":      3,
	"light_rain": 3,
	"heavy_rain": 4,
	"storm":      4,
}

// Normalize converts raw into the feature vector for the given mode.
// It is total: malformed or missing fields fall back to defaults and
// never produce an error. The temp/hum/windspeed transforms match the
// scales the models were trained on and must not change.
func Normalize(raw models.RawInput, mode models.PredictionMode) models.FeatureVector {
	return NormalizeAt(raw, mode, time.Now())
}

// NormalizeAt is Normalize with an explicit reference time used when
// the input carries no date.
func NormalizeAt(raw models.RawInput, mode models.PredictionMode, now time.Time) models.FeatureVector {
	date := now
	if raw.Date != "" {
		if parsed, err := time.Parse("2006-01-02", raw.Date); err == nil {
			date = parsed
		}
	}
	year := date.Year()
	month := float64(date.Month())
	// ISO weekday index: Monday=0 .. Sunday=6.
	weekday := float64((int(date.Weekday()) + 6) % 7)

	season, ok := seasonMap[strings.ToLower(raw.Season)]
	if !ok {
		season = defaultSeason
	}
	weathersit, ok := weatherMap[strings.ToLower(raw.Weather)]
	if !ok {
		weathersit = defaultWeather
	}

	celsius := defaultTemperature
	if raw.Temperature != nil {
		celsius = *raw.Temperature
	}
	temp := (celsius + 10) / 50

	humidity := defaultHumidity
	if raw.Humidity != nil {
		humidity = *raw.Humidity
	}
	hum := humidity / 100

	wind := defaultWindSpeed
	if raw.WindSpeed != nil {
		wind = *raw.WindSpeed
	}
	windspeed := wind / 67

	atemp := temp - windspeed*0.05

	yr := 0.0
	if year >= 2012 {
		yr = 1
	}
	holiday := 0.0
	if raw.IsHoliday {
		holiday = 1
	}
	workingday := 1.0
	if weekday == 5 || weekday == 6 || holiday == 1 {
		workingday = 0
	}

	fv := models.FeatureVector{
		"season":     season,
		"yr":         yr,
		"mnth":       month,
		"holiday":    holiday,
		"weekday":    weekday,
		"workingday": workingday,
		"weathersit": weathersit,
		"temp":       temp,
		"atemp":      atemp,
		"hum":        hum,
		"windspeed":  windspeed,
	}

	if mode == models.ModeHour {
		// Passed through unclamped; the hour models were trained on
		// 0-23 but out-of-range values are the caller's to validate.
		hr := defaultHour
		if raw.Hour != nil {
			hr = *raw.Hour
		}
		fv["hr"] = float64(hr)
	}

	return fv
}
