package repository

import (
	"context"

	"studytime-backend/internal/models"
)

// SessionPatch is a partial update for one session record. Nil fields are
// left untouched. Notes uses SetNotes so that an explicit clear (SET notes
// = NULL) can be told apart from "not provided".
type SessionPatch struct {
	Subject  *string
	EndTime  *int64
	Notes    *string
	SetNotes bool
}

// IsEmpty reports whether the patch would change nothing.
func (p SessionPatch) IsEmpty() bool {
	return p.Subject == nil && p.EndTime == nil && !p.SetNotes
}

// UserTotal is one ranking row: a user and their summed duration in ms.
type UserTotal struct {
	UserID    string `json:"user_id"`
	TotalTime int64  `json:"total_time"`
}

// UserStat extends UserTotal with the session count, for daily reports.
type UserStat struct {
	UserID       string `json:"user_id"`
	TotalTime    int64  `json:"total_time"`
	SessionCount int    `json:"session_count"`
}

// SessionStore is the single durable table of StudySession records. Every
// operation is atomic with respect to one record; the one-active-session
// invariant is enforced above this layer by the session service.
type SessionStore interface {
	InsertOpen(ctx context.Context, userID, communityID, subject string, startTime int64) (int64, error)
	InsertClosed(ctx context.Context, userID, communityID, subject string, startTime, endTime int64, notes *string) (int64, error)
	FindOpen(ctx context.Context, userID, communityID string) (*models.StudySession, error)
	FindByID(ctx context.Context, id int64) (*models.StudySession, error)
	ListOpen(ctx context.Context, communityID string) ([]models.StudySession, error)
	ListClosedSince(ctx context.Context, userID, communityID string, since int64) ([]models.StudySession, error)
	Update(ctx context.Context, id int64, patch SessionPatch) error
	Delete(ctx context.Context, id int64) error
	CloseOpen(ctx context.Context, id int64, endTime int64, notes *string) error
	ForceCloseAllOpen(ctx context.Context, userID, communityID string) error
	RankingData(ctx context.Context, communityID string, start, end int64) ([]UserTotal, error)
	DailyStats(ctx context.Context, communityID string, start, end int64) ([]UserStat, error)
	ListCommunities(ctx context.Context) ([]string, error)
}
