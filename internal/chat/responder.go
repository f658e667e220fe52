package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/pedalcast/internal/models"
	"go.uber.org/zap"
)

// Canned replies for the shortcut intents and fallbacks.
const (
	replyEmpty    = "Please type a message."
	replyGreeting = "Hi! I can help you book bikes.\n\nTry:\n'book scooter in mumbai for 2 hours'"
	replyPrices   = "Bike Prices:\n\n1. Scooter - 200/hr\n2. Sports Bike - 500/hr\n3. Cruiser - 700/hr"
	replyFallback = "I can help you:\n\n- Book bikes\n- Check prices\n\nWhat would you like?"
)

// BookingSaver persists a booking and assigns its id.
type BookingSaver interface {
	SaveBooking(ctx context.Context, booking *models.Booking) error
}

// Reply is the assistant's answer to one message. Booking is set only
// when a reservation was made.
type Reply struct {
	Reply   string          `json:"reply"`
	Action  string          `json:"action,omitempty"`
	Booking *models.Booking `json:"booking,omitempty"`
}

// Responder answers chat messages: shortcut intents first, then the
// booking parser, then the LLM fallback, then a canned reply.
type Responder struct {
	bookings  BookingSaver
	generator Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewResponder creates a responder. generator may be nil when no LLM is
// configured; bookings may be nil to skip persistence.
func NewResponder(bookings BookingSaver, generator Generator, logger *zap.Logger) *Responder {
	return &Responder{
		bookings:  bookings,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Respond handles one user message. It never returns an error; every
// failure degrades to a canned reply.
func (r *Responder) Respond(ctx context.Context, userEmail, message string) *Reply {
	if message == "" {
		return &Reply{Reply: replyEmpty}
	}
	if IsGreeting(message) {
		return &Reply{Reply: replyGreeting}
	}
	if IsPriceInquiry(message) {
		return &Reply{Reply: replyPrices}
	}

	if intent, ok := ParseIntentAt(message, r.now()); ok {
		return r.confirmBooking(ctx, userEmail, intent)
	}

	if r.generator != nil {
		prompt := fmt.Sprintf(
			"You are a helpful assistant for a bike rental service.\nUser question: %s\nProvide a helpful, concise answer (2-3 sentences).",
			message,
		)
		if text, err := r.generator.Generate(ctx, prompt); err == nil {
			return &Reply{Reply: text}
		} else if r.logger != nil {
			r.logger.Warn("chat fallback generation failed", zap.Error(err))
		}
	}

	return &Reply{Reply: replyFallback}
}

// confirmBooking persists the intent as a booking and builds the
// confirmation. A storage failure is logged and the confirmation still
// returned: the quote already succeeded.
func (r *Responder) confirmBooking(ctx context.Context, userEmail string, intent *models.BookingIntent) *Reply {
	booking := &models.Booking{
		UserEmail:  userEmail,
		City:       intent.City,
		BikeType:   intent.BikeType,
		Duration:   intent.Duration,
		Date:       intent.Date,
		StartTime:  intent.StartTime,
		TotalPrice: intent.TotalPrice,
		Status:     "confirmed",
	}
	if r.bookings != nil {
		if err := r.bookings.SaveBooking(ctx, booking); err != nil && r.logger != nil {
			r.logger.Warn("booking save failed", zap.Error(err))
		}
	}
	reply := fmt.Sprintf("Booking Confirmed!\n\n%s\n%s\n%dh\nTotal: %d",
		booking.BikeType, booking.City, booking.Duration, booking.TotalPrice)
	return &Reply{Reply: reply, Action: "BOOK", Booking: booking}
}
