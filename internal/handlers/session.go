package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"studytime-backend/internal/middleware"
	"studytime-backend/internal/models"
	"studytime-backend/internal/service"
	"studytime-backend/internal/timeutil"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// sessionView is a session plus display strings the command layer renders
// directly.
type sessionView struct {
	models.StudySession
	DurationText string `json:"duration_text,omitempty"`
	DateText     string `json:"date_text,omitempty"`
}

func newSessionView(s models.StudySession) sessionView {
	view := sessionView{StudySession: s}
	if s.EndTime != nil {
		view.DurationText = timeutil.FormatDuration(s.Duration())
	}
	view.DateText = timeutil.FormatDate(time.UnixMilli(s.StartTime))
	return view
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	var req struct {
		Subject string `json:"subject"`
		Force   bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, communityID, req.Subject, req.Force)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": newSessionView(*session),
	})
}

func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	var req struct {
		Note string `json:"note"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	session, err := h.sessions.Stop(r.Context(), userID, communityID, req.Note)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": newSessionView(*session),
	})
}

func (h *SessionHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	var req struct {
		Subject string  `json:"subject"`
		Minutes int     `json:"minutes"`
		Date    string  `json:"date"`
		Notes   *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessions.ManualAdd(r.Context(), userID, communityID, req.Subject, req.Minutes, req.Date, req.Notes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": newSessionView(*session),
	})
}

// Active lists the community's in-progress sessions with elapsed time,
// earliest starter first.
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	sessions, err := h.sessions.ActiveSessions(r.Context(), communityID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	now := time.Now().UnixMilli()
	type activeView struct {
		models.StudySession
		Elapsed     int64  `json:"elapsed"`
		ElapsedText string `json:"elapsed_text"`
	}

	views := make([]activeView, 0, len(sessions))
	for _, s := range sessions {
		elapsed := now - s.StartTime
		views = append(views, activeView{StudySession: s, Elapsed: elapsed, ElapsedText: timeutil.FormatDurationShort(elapsed)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(views),
		"sessions": views,
	})
}

// Recent lists the caller's editable sessions of the last 7 days.
func (h *SessionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	sessions, err := h.sessions.RecentSessions(r.Context(), userID, communityID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, newSessionView(s))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": views,
	})
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req struct {
		Subject *string `json:"subject"`
		Minutes *int    `json:"minutes"`
		Notes   *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessions.Update(r.Context(), userID, communityID, id, service.UpdatePatch{
		Subject: req.Subject,
		Minutes: req.Minutes,
		Notes:   req.Notes,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": newSessionView(*session),
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	communityID := chi.URLParam(r, "communityID")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	session, err := h.sessions.Delete(r.Context(), userID, communityID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Session deleted",
		"session": newSessionView(*session),
	})
}
