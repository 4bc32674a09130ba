package service

import (
	"context"
	"regexp"
	"sync"
	"time"

	"studytime-backend/internal/models"
	"studytime-backend/internal/repository"
	"studytime-backend/internal/timeutil"
)

// DefaultSubject is recorded when start is called without a subject.
const DefaultSubject = "作業中"

const (
	minSessionMinutes = 1
	maxSessionMinutes = 1440
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SessionService enforces the session lifecycle: at most one open session
// per (user, community) scope at any time.
type SessionService struct {
	store repository.SessionStore
	locks *scopeLocks
	now   func() time.Time
}

func NewSessionService(store repository.SessionStore) *SessionService {
	return &SessionService{
		store: store,
		locks: newScopeLocks(),
		now:   time.Now,
	}
}

// Start opens a new session for the scope. If one is already open it fails
// with AlreadyActiveError unless force is set, in which case the stale
// session is closed with zero duration first and kept as a historical
// record.
func (s *SessionService) Start(ctx context.Context, userID, communityID, subject string, force bool) (*models.StudySession, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	// Concurrent starts for the same scope serialize here so the loser
	// observes AlreadyActive instead of creating a second open session.
	unlock := s.locks.lock(userID, communityID)
	defer unlock()

	current, err := s.store.FindOpen(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}

	if current != nil {
		if !force {
			return nil, &AlreadyActiveError{Session: current}
		}
		if err := s.store.ForceCloseAllOpen(ctx, userID, communityID); err != nil {
			return nil, err
		}
	}

	startTime := s.now().UnixMilli()
	id, err := s.store.InsertOpen(ctx, userID, communityID, subject, startTime)
	if err != nil {
		return nil, err
	}

	return &models.StudySession{
		ID:          id,
		UserID:      userID,
		CommunityID: communityID,
		Subject:     subject,
		StartTime:   startTime,
	}, nil
}

// Stop closes the scope's open session at the current time with an
// optional note and returns the completed record.
func (s *SessionService) Stop(ctx context.Context, userID, communityID, note string) (*models.StudySession, error) {
	unlock := s.locks.lock(userID, communityID)
	defer unlock()

	current, err := s.store.FindOpen(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &NoActiveSessionError{}
	}

	endTime := s.now().UnixMilli()
	var notes *string
	if note != "" {
		notes = &note
	}

	if err := s.store.CloseOpen(ctx, current.ID, endTime, notes); err != nil {
		return nil, err
	}

	current.EndTime = &endTime
	current.Notes = notes
	return current, nil
}

// ManualAdd backfills a closed record directly. It never touches the
// active-session state machine: a user with an open session can still add
// historical records.
func (s *SessionService) ManualAdd(ctx context.Context, userID, communityID, subject string, minutes int, date string, notes *string) (*models.StudySession, error) {
	fields := map[string]string{}
	if subject == "" {
		fields["subject"] = "subject is required"
	}
	if minutes < minSessionMinutes || minutes > maxSessionMinutes {
		fields["minutes"] = "minutes must be between 1 and 1440"
	}

	var target time.Time
	if date != "" {
		if !dateFormat.MatchString(date) {
			fields["date"] = "date must be in YYYY-MM-DD format"
		} else {
			parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
			if err != nil {
				fields["date"] = "invalid calendar date"
			} else {
				// Anchor at midday to avoid timezone-boundary drift.
				target = parsed.Add(12 * time.Hour)
			}
		}
	} else {
		target = s.now()
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if target.After(s.now()) {
		return nil, &FutureDateError{}
	}

	startTime := target.UnixMilli()
	endTime := startTime + int64(minutes)*60000

	id, err := s.store.InsertClosed(ctx, userID, communityID, subject, startTime, endTime, notes)
	if err != nil {
		return nil, err
	}

	return &models.StudySession{
		ID:          id,
		UserID:      userID,
		CommunityID: communityID,
		Subject:     subject,
		StartTime:   startTime,
		EndTime:     &endTime,
		Notes:       notes,
	}, nil
}

// Delete removes a session by id after an ownership check and returns the
// removed record.
func (s *SessionService) Delete(ctx context.Context, userID, communityID string, id int64) (*models.StudySession, error) {
	session, err := s.owned(ctx, userID, communityID, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdatePatch carries the optional fields of an update. A non-nil empty
// Notes string clears the stored note.
type UpdatePatch struct {
	Subject *string
	Minutes *int
	Notes   *string
}

// Update rewrites subject, duration, or notes on an owned record. A minutes
// change recomputes end_time from the original start_time, so updating an
// open record closes it as a side effect.
func (s *SessionService) Update(ctx context.Context, userID, communityID string, id int64, patch UpdatePatch) (*models.StudySession, error) {
	if patch.Subject == nil && patch.Minutes == nil && patch.Notes == nil {
		return nil, &ValidationError{Fields: map[string]string{"patch": "at least one field must be provided"}}
	}
	if patch.Minutes != nil && (*patch.Minutes < minSessionMinutes || *patch.Minutes > maxSessionMinutes) {
		return nil, &ValidationError{Fields: map[string]string{"minutes": "minutes must be between 1 and 1440"}}
	}

	session, err := s.owned(ctx, userID, communityID, id)
	if err != nil {
		return nil, err
	}

	repoPatch := repository.SessionPatch{Subject: patch.Subject}
	if patch.Minutes != nil {
		endTime := session.StartTime + int64(*patch.Minutes)*60000
		repoPatch.EndTime = &endTime
	}
	if patch.Notes != nil {
		repoPatch.SetNotes = true
		if *patch.Notes != "" {
			repoPatch.Notes = patch.Notes
		}
	}

	if err := s.store.Update(ctx, id, repoPatch); err != nil {
		return nil, err
	}

	return s.store.FindByID(ctx, id)
}

// ActiveSessions lists the community's open sessions, earliest starter
// first.
func (s *SessionService) ActiveSessions(ctx context.Context, communityID string) ([]models.StudySession, error) {
	return s.store.ListOpen(ctx, communityID)
}

// RecentSessions returns the user's closed sessions of the last 7 days,
// newest first, capped at 10. This backs the edit listing.
func (s *SessionService) RecentSessions(ctx context.Context, userID, communityID string) ([]models.StudySession, error) {
	since := s.now().Add(-timeutil.WeekWindowDays * 24 * time.Hour).UnixMilli()
	sessions, err := s.store.ListClosedSince(ctx, userID, communityID, since)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 10 {
		sessions = sessions[:10]
	}
	return sessions, nil
}

func (s *SessionService) owned(ctx context.Context, userID, communityID string, id int64) (*models.StudySession, error) {
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID || session.CommunityID != communityID {
		return nil, &NotFoundError{}
	}
	return session, nil
}

// scopeLocks hands out one mutex per (user, community) scope. Entries are
// kept for the process lifetime; the key space is bounded by the number of
// active member/community pairs.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *scopeLocks) lock(userID, communityID string) func() {
	key := userID + "\x00" + communityID

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
