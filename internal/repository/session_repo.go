package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytime-backend/internal/models"
)

// SessionRepo is the Postgres-backed SessionStore.
type SessionRepo struct {
	pool *pgxpool.Pool
}

var _ SessionStore = (*SessionRepo)(nil)

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionColumns = "id, user_id, community_id, subject, start_time, end_time, notes"

func (r *SessionRepo) InsertOpen(ctx context.Context, userID, communityID, subject string, startTime int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO study_sessions (user_id, community_id, subject, start_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, communityID, subject, startTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert open session: %w", err)
	}
	return id, nil
}

func (r *SessionRepo) InsertClosed(ctx context.Context, userID, communityID, subject string, startTime, endTime int64, notes *string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO study_sessions (user_id, community_id, subject, start_time, end_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, communityID, subject, startTime, endTime, notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert closed session: %w", err)
	}
	return id, nil
}

func (r *SessionRepo) FindOpen(ctx context.Context, userID, communityID string) (*models.StudySession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE user_id = $1 AND community_id = $2 AND end_time IS NULL
		ORDER BY start_time ASC
		LIMIT 1
	`, userID, communityID)

	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id int64) (*models.StudySession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE id = $1
	`, id)

	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session %d: %w", id, err)
	}
	return s, nil
}

// ListOpen returns the community's in-progress sessions, earliest starters
// first (who has been studying longest).
func (r *SessionRepo) ListOpen(ctx context.Context, communityID string) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE community_id = $1 AND end_time IS NULL
		ORDER BY start_time ASC
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func (r *SessionRepo) ListClosedSince(ctx context.Context, userID, communityID string, since int64) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE user_id = $1 AND community_id = $2 AND end_time IS NOT NULL AND start_time >= $3
		ORDER BY start_time DESC
	`, userID, communityID, since)
	if err != nil {
		return nil, fmt.Errorf("list closed sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func (r *SessionRepo) Update(ctx context.Context, id int64, patch SessionPatch) error {
	// Build the SET clause from the provided fields only.
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if patch.Subject != nil {
		args = append(args, *patch.Subject)
		sets = append(sets, fmt.Sprintf("subject = $%d", len(args)))
	}
	if patch.EndTime != nil {
		args = append(args, *patch.EndTime)
		sets = append(sets, fmt.Sprintf("end_time = $%d", len(args)))
	}
	if patch.SetNotes {
		args = append(args, patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE study_sessions SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update session %d: %w", id, err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM study_sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	return nil
}

func (r *SessionRepo) CloseOpen(ctx context.Context, id int64, endTime int64, notes *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET end_time = $2, notes = $3
		WHERE id = $1 AND end_time IS NULL
	`, id, endTime, notes)
	if err != nil {
		return fmt.Errorf("close session %d: %w", id, err)
	}
	return nil
}

// ForceCloseAllOpen zeroes out any open session for the scope by setting
// end_time = start_time. Defensive against double-open states.
func (r *SessionRepo) ForceCloseAllOpen(ctx context.Context, userID, communityID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET end_time = start_time
		WHERE user_id = $1 AND community_id = $2 AND end_time IS NULL
	`, userID, communityID)
	if err != nil {
		return fmt.Errorf("force close sessions: %w", err)
	}
	return nil
}

func (r *SessionRepo) RankingData(ctx context.Context, communityID string, start, end int64) ([]UserTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, SUM(end_time - start_time) AS total_time
		FROM study_sessions
		WHERE community_id = $1 AND end_time IS NOT NULL
		  AND start_time >= $2 AND start_time <= $3
		GROUP BY user_id
		HAVING SUM(end_time - start_time) > 0
		ORDER BY total_time DESC
		LIMIT 10
	`, communityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ranking data: %w", err)
	}
	defer rows.Close()

	var totals []UserTotal
	for rows.Next() {
		var t UserTotal
		if err := rows.Scan(&t.UserID, &t.TotalTime); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *SessionRepo) DailyStats(ctx context.Context, communityID string, start, end int64) ([]UserStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, SUM(end_time - start_time) AS total_time, COUNT(*) AS session_count
		FROM study_sessions
		WHERE community_id = $1 AND end_time IS NOT NULL
		  AND start_time >= $2 AND start_time <= $3
		GROUP BY user_id
		HAVING SUM(end_time - start_time) > 0
		ORDER BY total_time DESC
		LIMIT 10
	`, communityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	defer rows.Close()

	var stats []UserStat
	for rows.Next() {
		var s UserStat
		if err := rows.Scan(&s.UserID, &s.TotalTime, &s.SessionCount); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *SessionRepo) ListCommunities(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT community_id FROM study_sessions")
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan community id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSession(row pgx.Row) (*models.StudySession, error) {
	var s models.StudySession
	err := row.Scan(&s.ID, &s.UserID, &s.CommunityID, &s.Subject, &s.StartTime, &s.EndTime, &s.Notes)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]models.StudySession, error) {
	var sessions []models.StudySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
