package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studytime-backend/internal/middleware"
	"studytime-backend/internal/service"
	"studytime-backend/internal/timeutil"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Log aggregates one user's completed sessions over a period. The target
// user defaults to the caller; pass ?user= to view someone else's log.
func (h *StatsHandler) Log(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	period, ok := timeutil.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "period must be one of today, week, month, all", r))
		return
	}

	targetUser := r.URL.Query().Get("user")
	if targetUser == "" {
		targetUser = middleware.GetUserID(r.Context())
	}

	sessions, err := h.stats.CompletedSessions(r.Context(), targetUser, communityID, period)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	log := service.BuildUserLog(sessions)

	type subjectView struct {
		Subject       string `json:"subject"`
		TotalTime     int64  `json:"total_time"`
		TotalTimeText string `json:"total_time_text"`
	}
	subjects := make([]subjectView, 0, len(log.Subjects))
	for _, s := range log.Subjects {
		subjects = append(subjects, subjectView{
			Subject:       s.Subject,
			TotalTime:     s.TotalTime,
			TotalTimeText: timeutil.FormatDurationShort(s.TotalTime),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         targetUser,
		"period":          period,
		"period_label":    timeutil.PeriodDisplayName(period),
		"total_time":      log.TotalTime,
		"total_time_text": timeutil.FormatDurationShort(log.TotalTime),
		"session_count":   log.SessionCount,
		"subjects":        subjects,
	})
}

// Ranking returns the community's top users by completed study time over a
// period.
func (h *StatsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	period, ok := timeutil.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "period must be one of today, week, month, all", r))
		return
	}

	totals, err := h.stats.Ranking(r.Context(), communityID, period)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	type rankView struct {
		Rank          int    `json:"rank"`
		UserID        string `json:"user_id"`
		TotalTime     int64  `json:"total_time"`
		TotalTimeText string `json:"total_time_text"`
	}
	entries := make([]rankView, 0, len(totals))
	for i, t := range totals {
		entries = append(entries, rankView{
			Rank:          i + 1,
			UserID:        t.UserID,
			TotalTime:     t.TotalTime,
			TotalTimeText: timeutil.FormatDurationShort(t.TotalTime),
		})
	}

	now := time.Now()
	start, end := timeutil.ResolveWindow(period, now)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":       period,
		"period_label": timeutil.PeriodDisplayName(period),
		"window": map[string]string{
			"start": timeutil.FormatDate(time.UnixMilli(start)),
			"end":   timeutil.FormatDate(time.UnixMilli(end)),
		},
		"ranking": entries,
	})
}
