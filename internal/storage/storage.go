// Package storage defines the persistence interface for bookings,
// predictions, and report uploads.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/pedalcast/internal/models"
)

// ErrDuplicateUpload is returned when a user re-uploads a report whose
// content hash they already uploaded. Surfaced distinctly so the caller
// can present an "already uploaded" message.
var ErrDuplicateUpload = errors.New("report already uploaded")

// Storage defines booking, prediction, and upload persistence.
type Storage interface {
	// Booking operations
	SaveBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context, userEmail string) ([]*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (bool, error)

	// Prediction audit operations
	SavePrediction(ctx context.Context, prediction *models.Prediction) error
	ListPredictions(ctx context.Context, userEmail string, limit int) ([]*models.Prediction, error)

	// Upload operations; duplicates are keyed by (user, content hash)
	SaveUpload(ctx context.Context, upload *models.Upload) error
	FindUpload(ctx context.Context, userEmail, fileHash string) (*models.Upload, error)
	GetUploadsByIDs(ctx context.Context, ids []string) ([]*models.Upload, error)

	// Stats
	CountBookings(ctx context.Context) (int64, error)
	CountPredictions(ctx context.Context) (int64, error)
	CountUploads(ctx context.Context) (int64, error)

	Close() error
}
