package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"studytime-backend/internal/service"
	"studytime-backend/internal/timeutil"
)

var reportDateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type ReportHandler struct {
	stats *service.StatsService
}

func NewReportHandler(stats *service.StatsService) *ReportHandler {
	return &ReportHandler{stats: stats}
}

// Daily renders the on-demand report for a given day (default today).
// Unlike the scheduled broadcast, an empty day produces an explicit
// no-data response rather than silence.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")

	target := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		if !reportDateFormat.MatchString(dateStr) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be in YYYY-MM-DD format", r))
			return
		}
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "invalid calendar date", r))
			return
		}
		target = parsed
	}

	dayStart, dayEnd := timeutil.DayBounds(target)

	stats, err := h.stats.DailyStats(r.Context(), communityID, dayStart, dayEnd)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	report := service.BuildDailyReport(communityID, target, stats)
	if report == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"report":  nil,
			"message": "この日は勉強記録がありませんでした。",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": report,
	})
}
