package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/pedalcast/internal/extract"
	"github.com/hyperjump/pedalcast/internal/features"
	"github.com/hyperjump/pedalcast/internal/fileid"
	"github.com/hyperjump/pedalcast/internal/keyword"
	"github.com/hyperjump/pedalcast/internal/models"
	"github.com/hyperjump/pedalcast/internal/storage"
	"github.com/hyperjump/pedalcast/internal/weather"
	"go.uber.org/zap"
)

const (
	anonymousUser     = "anonymous"
	maxUploadBytes    = 10 << 20
	predictionsLimit  = 100
	uploadSearchLimit = 20
)

type predictRequest struct {
	models.RawInput
	UserEmail string `json:"user_email"`
}

func (s *Server) handlePredictDay(w http.ResponseWriter, r *http.Request) {
	s.handlePredict(w, r, models.ModeDay)
}

func (s *Server) handlePredictHour(w http.ResponseWriter, r *http.Request) {
	s.handlePredict(w, r, models.ModeHour)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request, mode models.PredictionMode) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	predictor := s.registry.Get(mode)
	if predictor == nil {
		s.respondError(w, http.StatusServiceUnavailable, string(mode)+" model not loaded")
		return
	}

	fv := features.Normalize(req.RawInput, mode)
	values := fv.Values(predictor.FeatureNames())
	value, err := predictor.Predict(r.Context(), values)
	if err != nil {
		s.logger.Error("prediction failed", zap.String("mode", string(mode)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Audit write is best-effort; the forecast already succeeded.
	user := req.UserEmail
	if user == "" {
		user = anonymousUser
	}
	record := &models.Prediction{
		UserEmail: user,
		Type:      mode,
		Input:     req.RawInput,
		Value:     value,
	}
	if err := s.storage.SavePrediction(r.Context(), record); err != nil {
		s.logger.Warn("prediction save failed", zap.Error(err))
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"prediction": value,
		"type":       mode,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" || !s.extractor.Supported(header.Filename) {
		s.respondError(w, http.StatusBadRequest, "invalid file")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	user := r.FormValue("user_email")
	if user == "" {
		user = anonymousUser
	}
	hash := fileid.ContentHash(content)

	if existing, err := s.storage.FindUpload(r.Context(), user, hash); err == nil {
		s.respondJSON(w, http.StatusConflict, map[string]interface{}{
			"success":   false,
			"duplicate": true,
			"message":   "This report was already uploaded on " + existing.CreatedAt.Format("2006-01-02 15:04"),
		})
		return
	}

	// Extraction failures degrade to an all-default low-confidence
	// parse rather than an error response.
	text, err := s.extractor.ExtractBytes(content, header.Filename)
	if err != nil {
		s.logger.Warn("text extraction failed",
			zap.String("filename", header.Filename), zap.Error(err))
		text = ""
	}
	doc := weather.Parse(text)

	upload := &models.Upload{
		UserEmail: user,
		FileHash:  hash,
		Filename:  header.Filename,
		Extracted: doc,
		Text:      text,
	}
	if err := s.storage.SaveUpload(r.Context(), upload); err != nil {
		if errors.Is(err, storage.ErrDuplicateUpload) {
			s.respondJSON(w, http.StatusConflict, map[string]interface{}{
				"success":   false,
				"duplicate": true,
				"message":   "This report was already uploaded",
			})
			return
		}
		s.logger.Warn("upload save failed", zap.Error(err))
	}

	if s.reports != nil && upload.ID != "" {
		if err := s.reports.Index(r.Context(), upload.ID, &keyword.ReportDoc{
			Content:  text,
			Filename: header.Filename,
			User:     user,
		}); err != nil {
			s.logger.Warn("report index failed", zap.Error(err))
		}
	}

	metadata := map[string]interface{}{
		"filename":         header.Filename,
		"confidence":       doc.Confidence,
		"extracted_fields": doc.ExtractedFields,
	}
	if strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		metadata["page_count"] = extract.PageCount(content)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"extracted_data": doc,
		"metadata":       metadata,
	})
}

func (s *Server) handleUploadSearch(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user_email")
	if user == "" {
		s.respondError(w, http.StatusBadRequest, "user email required")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query required")
		return
	}
	if s.reports == nil {
		s.respondError(w, http.StatusNotImplemented, "report search not enabled")
		return
	}

	hits, err := s.reports.Search(r.Context(), user, query, uploadSearchLimit)
	if err != nil {
		s.logger.Error("upload search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		scores[h.ID] = h.Score
	}
	uploads, err := s.storage.GetUploadsByIDs(r.Context(), ids)
	if err != nil {
		s.logger.Error("upload lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type hit struct {
		*models.Upload
		Score float64 `json:"score"`
	}
	results := make([]hit, len(uploads))
	for i, u := range uploads {
		results[i] = hit{Upload: u, Score: scores[u.ID]}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user := req.UserEmail
	if user == "" {
		user = anonymousUser
	}
	reply := s.responder.Respond(r.Context(), user, strings.TrimSpace(req.Message))
	s.respondJSON(w, http.StatusOK, reply)
}

func (s *Server) handleBookingsList(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user_email")
	if user == "" {
		s.respondError(w, http.StatusBadRequest, "user email required")
		return
	}
	bookings, err := s.storage.ListBookings(r.Context(), user)
	if err != nil {
		s.logger.Error("list bookings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"bookings": bookings,
	})
}

type bookingCreateRequest struct {
	UserEmail  string `json:"user_email"`
	City       string `json:"city"`
	BikeType   string `json:"bike_type"`
	Duration   int    `json:"duration"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	TotalPrice int    `json:"total_price"`
	Status     string `json:"status"`
}

func (s *Server) handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	var req bookingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserEmail == "" {
		s.respondError(w, http.StatusBadRequest, "user email required")
		return
	}
	booking := &models.Booking{
		UserEmail:  req.UserEmail,
		City:       req.City,
		BikeType:   req.BikeType,
		Duration:   req.Duration,
		Date:       req.Date,
		StartTime:  req.StartTime,
		TotalPrice: req.TotalPrice,
		Status:     req.Status,
	}
	if err := s.storage.SaveBooking(r.Context(), booking); err != nil {
		s.logger.Error("booking save failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"booking_id": booking.ID,
	})
}

func (s *Server) handleBookingDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.storage.DeleteBooking(r.Context(), id)
	if err != nil {
		s.logger.Error("booking delete failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "booking not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handlePredictionsList(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user_email")
	if user == "" {
		s.respondError(w, http.StatusBadRequest, "user email required")
		return
	}
	predictions, err := s.storage.ListPredictions(r.Context(), user, predictionsLimit)
	if err != nil {
		s.logger.Error("list predictions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if predictions == nil {
		predictions = []*models.Prediction{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"predictions": predictions,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Pedalcast bike rental backend",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"models": map[string]bool{
			"day_model":  s.registry.Available(models.ModeDay),
			"hour_model": s.registry.Available(models.ModeHour),
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookings, err := s.storage.CountBookings(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	predictions, err := s.storage.CountPredictions(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	uploads, err := s.storage.CountUploads(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"bookings":    bookings,
		"predictions": predictions,
		"uploads":     uploads,
		"models": map[string]bool{
			"day":  s.registry.Available(models.ModeDay),
			"hour": s.registry.Available(models.ModeHour),
		},
	}
	if s.reports != nil {
		if n, err := s.reports.DocCount(); err == nil {
			resp["report_index_size"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
