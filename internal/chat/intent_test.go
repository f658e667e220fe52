package chat

import (
	"testing"
	"time"
)

var intentNow = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

func TestParseIntent_Booking(t *testing.T) {
	intent, ok := ParseIntentAt("book scooter in mumbai for 2 hours", intentNow)
	if !ok {
		t.Fatal("expected a booking intent")
	}
	if intent.City != "Mumbai" {
		t.Errorf("city: got %s, want Mumbai", intent.City)
	}
	if intent.BikeType != BikeScooter {
		t.Errorf("bike: got %s, want Scooter", intent.BikeType)
	}
	if intent.Duration != 2 {
		t.Errorf("duration: got %d, want 2", intent.Duration)
	}
	if intent.TotalPrice != 400 {
		t.Errorf("total: got %d, want 400", intent.TotalPrice)
	}
	if intent.Date != "2024-06-01" {
		t.Errorf("date: got %s", intent.Date)
	}
	if intent.StartTime != "14:30" {
		t.Errorf("start time: got %s", intent.StartTime)
	}
}

func TestParseIntent_BikeVariants(t *testing.T) {
	tests := []struct {
		message string
		bike    string
		price   int
	}{
		{"sports bike in delhi for 3 hrs", BikeSports, 1500},
		{"sport bike in pune for 1 hour", BikeSports, 500},
		{"cruiser in bangalore for 4 hours", BikeCruiser, 2800},
		{"need a scooter in hyderabad for 1 hr", BikeScooter, 200},
	}
	for _, tt := range tests {
		intent, ok := ParseIntentAt(tt.message, intentNow)
		if !ok {
			t.Errorf("%q: expected a booking intent", tt.message)
			continue
		}
		if intent.BikeType != tt.bike {
			t.Errorf("%q: bike got %s, want %s", tt.message, intent.BikeType, tt.bike)
		}
		if intent.TotalPrice != tt.price {
			t.Errorf("%q: total got %d, want %d", tt.message, intent.TotalPrice, tt.price)
		}
	}
}

func TestParseIntent_IncompleteMessages(t *testing.T) {
	messages := []string{
		"book a scooter for 2 hours",      // no city
		"book something in mumbai for 2h", // no bike
		"scooter in mumbai",               // no duration
		"scooter in mumbai for 0 hours",   // zero duration
		"",
	}
	for _, m := range messages {
		if _, ok := ParseIntentAt(m, intentNow); ok {
			t.Errorf("%q: expected no intent", m)
		}
	}
}

func TestIsGreeting(t *testing.T) {
	if !IsGreeting("Hello there") {
		t.Error("Hello should be a greeting")
	}
	if !IsGreeting("hey") {
		t.Error("hey should be a greeting")
	}
	if IsGreeting("book a cruiser") {
		t.Error("booking request is not a greeting")
	}
}

func TestIsPriceInquiry(t *testing.T) {
	if !IsPriceInquiry("what is the price?") {
		t.Error("price question should match")
	}
	if !IsPriceInquiry("hourly rates please") {
		t.Error("rate question should match")
	}
	if IsPriceInquiry("book a cruiser") {
		t.Error("booking request is not a price inquiry")
	}
}
