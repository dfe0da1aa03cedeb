// Package http exposes the check-in pipeline over REST plus a websocket
// score feed. Question payloads leaving this package carry labels and
// metadata only; option values and scoring weights never cross this
// boundary outside the explicitly gated demo endpoint.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"health-checkin-service/internal/app"
	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/platform/logger"
)

// RiskModel is the narrow risk-prediction collaborator contract.
type RiskModel interface {
	Predict(kind string, profile domain.HealthProfile, features map[string]int) (domain.RiskAssessment, error)
}

type Handler struct {
	service *app.CheckinService
	rewards *app.RewardService // optional
	risk    RiskModel          // optional
	log     *logger.Logger
	demo    bool
}

func NewHandler(service *app.CheckinService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// WithRewards enables the leaderboard and stats endpoints.
func (h *Handler) WithRewards(rewards *app.RewardService) *Handler {
	h.rewards = rewards
	return h
}

// WithRiskModel enables the predictions endpoint.
func (h *Handler) WithRiskModel(model RiskModel) *Handler {
	h.risk = model
	return h
}

// WithDemo lets the example endpoint expose scoring weights. Off by default.
func (h *Handler) WithDemo(enabled bool) *Handler {
	h.demo = enabled
	return h
}

// Register mounts all REST routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/daily-questions/today", h.handleToday)
	mux.HandleFunc("/daily-questions/submit", h.handleSubmit)
	mux.HandleFunc("/daily-questions/history", h.handleHistory)
	mux.HandleFunc("/daily-questions/example", h.handleExample)
	mux.HandleFunc("/gamification/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/gamification/me", h.handleStats)
	mux.HandleFunc("/predictions", h.handlePredict)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.Today(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type submitRequest struct {
	Date    string            `json:"date"`
	Answers domain.RawAnswers `json:"answers"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submit payload")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "answers are required")
		return
	}

	result, err := h.service.Submit(r.Context(), userID, req.Date, req.Answers)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleExample serves the documented example payload. No auth required.
// Weights appear only when the server runs with the demo flag.
func (h *Handler) handleExample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Example(h.demo))
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.rewards == nil {
		writeJSON(w, http.StatusOK, []domain.LeaderboardEntry{})
		return
	}
	top, err := h.rewards.Leaderboard(r.Context(), 20)
	if err != nil {
		// Leaderboard is best-effort; an empty board beats a 500.
		h.log.Warn("leaderboard read failed", "err", err)
		writeJSON(w, http.StatusOK, []domain.LeaderboardEntry{})
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if h.rewards == nil {
		writeJSON(w, http.StatusOK, domain.UserStats{UserID: userID})
		return
	}
	stats, err := h.rewards.Stats(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type predictRequest struct {
	Type    string               `json:"prediction_type"`
	Profile domain.HealthProfile `json:"profile"`
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if h.risk == nil {
		writeError(w, http.StatusNotImplemented, "risk predictions not configured")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction payload")
		return
	}

	features, err := h.service.LatestFeatures(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	assessment, err := h.risk.Predict(req.Type, req.Profile, features)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, assessment)
}

// requireUser extracts the caller identity injected by the upstream auth
// gateway. Authentication itself is out of scope here.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return userID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSubmission):
		writeError(w, http.StatusBadRequest, "You have already completed today's check-in! Come back tomorrow 🌅")
	case errors.Is(err, domain.ErrQuestionSetNotFound):
		writeError(w, http.StatusNotFound, "Today's questions not found. Please load them first.")
	default:
		h.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
