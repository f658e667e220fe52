// Package storage provides the SQLite implementation of Storage.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/pedalcast/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if needed.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		city TEXT NOT NULL,
		bike_type TEXT NOT NULL,
		duration INTEGER NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		total_price INTEGER NOT NULL,
		status TEXT DEFAULT 'confirmed',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_email);

	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		user_email TEXT,
		prediction_type TEXT NOT NULL,
		input_data TEXT NOT NULL,
		prediction_value INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_email);

	CREATE TABLE IF NOT EXISTS report_uploads (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		filename TEXT,
		extracted_data TEXT,
		report_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_email, file_hash)
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_hash ON report_uploads(file_hash);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveBooking inserts a booking, assigning its id and creation time.
func (s *SQLiteStorage) SaveBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = "confirmed"
	}
	booking.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, user_email, city, bike_type, duration, date, start_time, total_price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.UserEmail, booking.City, booking.BikeType, booking.Duration,
		booking.Date, booking.StartTime, booking.TotalPrice, booking.Status, booking.CreatedAt,
	)
	return err
}

// ListBookings returns a user's bookings, newest first.
func (s *SQLiteStorage) ListBookings(ctx context.Context, userEmail string) ([]*models.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, city, bike_type, duration, date, start_time, total_price, status, created_at
		 FROM bookings WHERE user_email = ? ORDER BY created_at DESC`,
		userEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.UserEmail, &b.City, &b.BikeType, &b.Duration,
			&b.Date, &b.StartTime, &b.TotalPrice, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

// DeleteBooking removes a booking by id. Returns false when no row
// matched.
func (s *SQLiteStorage) DeleteBooking(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SavePrediction inserts a prediction audit record. The input snapshot
// is stored as a JSON document.
func (s *SQLiteStorage) SavePrediction(ctx context.Context, prediction *models.Prediction) error {
	inputJSON, err := json.Marshal(prediction.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input snapshot: %w", err)
	}
	if prediction.ID == "" {
		prediction.ID = uuid.NewString()
	}
	prediction.CreatedAt = time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, user_email, prediction_type, input_data, prediction_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		prediction.ID, prediction.UserEmail, string(prediction.Type), string(inputJSON),
		prediction.Value, prediction.CreatedAt,
	)
	return err
}

// ListPredictions returns a user's predictions, newest first, up to
// limit rows.
func (s *SQLiteStorage) ListPredictions(ctx context.Context, userEmail string, limit int) ([]*models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, prediction_type, input_data, prediction_value, created_at
		 FROM predictions WHERE user_email = ? ORDER BY created_at DESC LIMIT ?`,
		userEmail, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		var p models.Prediction
		var inputJSON string
		var ptype string
		if err := rows.Scan(&p.ID, &p.UserEmail, &ptype, &inputJSON, &p.Value, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Type = models.PredictionMode(ptype)
		if inputJSON != "" {
			if err := json.Unmarshal([]byte(inputJSON), &p.Input); err != nil {
				return nil, fmt.Errorf("failed to unmarshal input snapshot: %w", err)
			}
		}
		predictions = append(predictions, &p)
	}
	return predictions, rows.Err()
}

// SaveUpload inserts an upload record. Returns ErrDuplicateUpload when
// (user, hash) already exists.
func (s *SQLiteStorage) SaveUpload(ctx context.Context, upload *models.Upload) error {
	extractedJSON, err := json.Marshal(upload.Extracted)
	if err != nil {
		return fmt.Errorf("failed to marshal extracted data: %w", err)
	}
	if upload.ID == "" {
		upload.ID = uuid.NewString()
	}
	upload.CreatedAt = time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_uploads (id, user_email, file_hash, filename, extracted_data, report_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		upload.ID, upload.UserEmail, upload.FileHash, upload.Filename,
		string(extractedJSON), upload.Text, upload.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateUpload
		}
		return err
	}
	return nil
}

// FindUpload returns the upload for (user, hash), or sql.ErrNoRows
// wrapped when absent.
func (s *SQLiteStorage) FindUpload(ctx context.Context, userEmail, fileHash string) (*models.Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_email, file_hash, filename, extracted_data, report_text, created_at
		 FROM report_uploads WHERE user_email = ? AND file_hash = ?`,
		userEmail, fileHash,
	)
	return scanUpload(row.Scan)
}

// GetUploadsByIDs returns the uploads with the given ids, preserving
// the input order. Unknown ids are skipped.
func (s *SQLiteStorage) GetUploadsByIDs(ctx context.Context, ids []string) ([]*models.Upload, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, file_hash, filename, extracted_data, report_text, created_at
		 FROM report_uploads WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Upload, len(ids))
	for rows.Next() {
		u, err := scanUpload(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	uploads := make([]*models.Upload, 0, len(byID))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

func scanUpload(scan func(dest ...interface{}) error) (*models.Upload, error) {
	var u models.Upload
	var extractedJSON sql.NullString
	var text sql.NullString
	err := scan(&u.ID, &u.UserEmail, &u.FileHash, &u.Filename, &extractedJSON, &text, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("upload not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	if extractedJSON.Valid && extractedJSON.String != "" {
		if err := json.Unmarshal([]byte(extractedJSON.String), &u.Extracted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted data: %w", err)
		}
	}
	u.Text = text.String
	return &u, nil
}

// CountBookings returns the total number of bookings.
func (s *SQLiteStorage) CountBookings(ctx context.Context) (int64, error) {
	return s.count(ctx, "bookings")
}

// CountPredictions returns the total number of predictions.
func (s *SQLiteStorage) CountPredictions(ctx context.Context) (int64, error) {
	return s.count(ctx, "predictions")
}

// CountUploads returns the total number of uploads.
func (s *SQLiteStorage) CountUploads(ctx context.Context) (int64, error) {
	return s.count(ctx, "report_uploads")
}

func (s *SQLiteStorage) count(ctx context.Context, table string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
