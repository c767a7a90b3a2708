// Package api provides HTTP handlers for MindMate endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/techniques"
	"github.com/TsarRusi/mindmate/internal/util"
)

// messageRequest is the body of POST /message.
type messageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Mode   string `json:"mode,omitempty"`
}

// moodRequest is the body of POST /mood.
type moodRequest struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Note   string `json:"note,omitempty"`
}

// sessionRequest is the body of POST /sessions.
type sessionRequest struct {
	UserID      string `json:"user_id"`
	TechniqueID int    `json:"technique_id"`
	Minutes     int    `json:"minutes"`
	MoodBefore  int    `json:"mood_before"`
	MoodAfter   int    `json:"mood_after"`
}

// techniqueRequest is the body of POST /favorites and POST /ratings.
type techniqueRequest struct {
	UserID      string `json:"user_id"`
	TechniqueID int    `json:"technique_id"`
	Rating      int    `json:"rating,omitempty"`
}

func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.messageHandler: processing message request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.messageHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.messageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	// First-contact convenience: mint an ID so clients can start a
	// conversation without a separate enrollment call.
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = util.GenerateUserID()
		slog.Debug("Server.messageHandler: generated user ID", "userID", req.UserID)
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyMessageBody.Error()))
		return
	}

	// Default to support mode if not specified
	mode := models.ChatMode(req.Mode)
	if req.Mode == "" {
		mode = models.ChatModeSupport
	}
	if !models.IsValidChatMode(mode) {
		slog.Warn("Server.messageHandler: invalid chat mode", "mode", req.Mode)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidChatMode.Error()))
		return
	}

	reply := s.router.Respond(r.Context(), req.UserID, req.Text, mode)
	slog.Info("Server.messageHandler: reply generated", "userID", req.UserID, "mode", mode)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{
		"reply":   reply,
		"user_id": req.UserID,
	}))
}

func (s *Server) moodHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.moodHandler: processing mood request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.moodHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.moodHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	ack, err := s.moodLog.Record(req.UserID, req.Score, req.Note)
	if err != nil {
		slog.Warn("Server.moodHandler: validation failed", "error", err, "userID", req.UserID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	slog.Info("Server.moodHandler: mood recorded", "userID", req.UserID, "score", req.Score)
	writeJSONResponse(w, http.StatusCreated, models.Recorded(ack))
}

func (s *Server) moodSummaryHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.moodSummaryHandler: processing summary request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}

	summary, err := s.moodLog.Summarize(userID)
	if err != nil {
		if errors.Is(err, models.ErrNoMoodData) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No mood entries recorded"))
			return
		}
		slog.Error("Server.moodSummaryHandler: failed to summarize", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch mood summary"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(summary))
}

func (s *Server) techniquesHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.techniquesHandler: processing techniques request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
			"categories": techniques.Categories(),
		}))
		return
	}

	list, err := techniques.Pick(category)
	if err != nil {
		slog.Warn("Server.techniquesHandler: unknown category", "category", category)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown category: "+category))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

func (s *Server) randomTechniqueHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.randomTechniqueHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// An optional mood score personalizes the pick.
	if moodParam := r.URL.Query().Get("mood"); moodParam != "" {
		score, err := strconv.Atoi(moodParam)
		if err != nil || models.ValidateMoodScore(score) != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidMoodScore.Error()))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(techniques.PickForMood(score)))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(techniques.PickRandom()))
}

func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.sessionsHandler: processing session request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sessionsHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := s.tracker.RecordSession(req.UserID, req.TechniqueID, req.Minutes, req.MoodBefore, req.MoodAfter); err != nil {
		slog.Warn("Server.sessionsHandler: validation failed", "error", err, "userID", req.UserID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	slog.Info("Server.sessionsHandler: session recorded", "userID", req.UserID, "techniqueID", req.TechniqueID)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Session recorded successfully", nil))
}

func (s *Server) favoritesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.favoritesHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req techniqueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := s.tracker.AddFavorite(req.UserID, req.TechniqueID); err != nil {
		slog.Warn("Server.favoritesHandler: validation failed", "error", err, "userID", req.UserID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Favorite added successfully", nil))
}

func (s *Server) ratingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.ratingsHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req techniqueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := s.tracker.Rate(req.UserID, req.TechniqueID, req.Rating); err != nil {
		slog.Warn("Server.ratingsHandler: validation failed", "error", err, "userID", req.UserID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Rating recorded successfully", nil))
}

// statsHandler returns mood and practice statistics for a user (GET /stats).
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.statsHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}

	stats, err := s.tracker.Stats(userID)
	if err != nil {
		slog.Error("Server.statsHandler: failed to compute stats", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to compute stats"))
		return
	}

	result := map[string]interface{}{
		"practice": stats,
	}
	if summary, err := s.moodLog.Summarize(userID); err == nil {
		result["mood"] = summary
	}

	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// healthHandler provides a health check endpoint for monitoring.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"providers": s.router.HasProviders(),
	}

	writeJSONResponse(w, http.StatusOK, healthData)
}

// rootHandler serves basic service info at /.
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("MindMate API", map[string]string{
		"message":    "POST /message",
		"mood":       "POST /mood, GET /mood/summary",
		"techniques": "GET /techniques, GET /techniques/random",
		"sessions":   "POST /sessions, POST /favorites, POST /ratings",
		"stats":      "GET /stats",
		"health":     "GET /health",
	}))
}
