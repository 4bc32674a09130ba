package service

import (
	"context"
	"sort"
	"sync"

	"studytime-backend/internal/models"
	"studytime-backend/internal/repository"
)

// memStore is an in-memory SessionStore mirroring the Postgres
// implementation's ordering, filtering, and limit semantics.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions []*models.StudySession
}

var _ repository.SessionStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) InsertOpen(_ context.Context, userID, communityID, subject string, startTime int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.sessions = append(m.sessions, &models.StudySession{
		ID: id, UserID: userID, CommunityID: communityID, Subject: subject, StartTime: startTime,
	})
	return id, nil
}

func (m *memStore) InsertClosed(_ context.Context, userID, communityID, subject string, startTime, endTime int64, notes *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	end := endTime
	m.sessions = append(m.sessions, &models.StudySession{
		ID: id, UserID: userID, CommunityID: communityID, Subject: subject,
		StartTime: startTime, EndTime: &end, Notes: notes,
	})
	return id, nil
}

func (m *memStore) FindOpen(_ context.Context, userID, communityID string) (*models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID && s.CommunityID == communityID && s.EndTime == nil {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListOpen(_ context.Context, communityID string) ([]models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StudySession
	for _, s := range m.sessions {
		if s.CommunityID == communityID && s.EndTime == nil {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memStore) ListClosedSince(_ context.Context, userID, communityID string, since int64) ([]models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StudySession
	for _, s := range m.sessions {
		if s.UserID == userID && s.CommunityID == communityID && s.EndTime != nil && s.StartTime >= since {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, nil
}

func (m *memStore) Update(_ context.Context, id int64, patch repository.SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.ID != id {
			continue
		}
		if patch.Subject != nil {
			s.Subject = *patch.Subject
		}
		if patch.EndTime != nil {
			end := *patch.EndTime
			s.EndTime = &end
		}
		if patch.SetNotes {
			s.Notes = patch.Notes
		}
		return nil
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) CloseOpen(_ context.Context, id int64, endTime int64, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.ID == id && s.EndTime == nil {
			end := endTime
			s.EndTime = &end
			s.Notes = notes
		}
	}
	return nil
}

func (m *memStore) ForceCloseAllOpen(_ context.Context, userID, communityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID && s.CommunityID == communityID && s.EndTime == nil {
			end := s.StartTime
			s.EndTime = &end
		}
	}
	return nil
}

func (m *memStore) RankingData(_ context.Context, communityID string, start, end int64) ([]repository.UserTotal, error) {
	stats, err := m.DailyStats(nil, communityID, start, end)
	if err != nil {
		return nil, err
	}

	var totals []repository.UserTotal
	for _, s := range stats {
		totals = append(totals, repository.UserTotal{UserID: s.UserID, TotalTime: s.TotalTime})
	}
	return totals, nil
}

func (m *memStore) DailyStats(_ context.Context, communityID string, start, end int64) ([]repository.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := make(map[string]int)
	var stats []repository.UserStat
	for _, s := range m.sessions {
		if s.CommunityID != communityID || s.EndTime == nil || s.StartTime < start || s.StartTime > end {
			continue
		}
		i, ok := index[s.UserID]
		if !ok {
			i = len(stats)
			index[s.UserID] = i
			stats = append(stats, repository.UserStat{UserID: s.UserID})
		}
		stats[i].TotalTime += s.Duration()
		stats[i].SessionCount++
	}

	var out []repository.UserStat
	for _, s := range stats {
		if s.TotalTime > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalTime > out[j].TotalTime })
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}

func (m *memStore) ListCommunities(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var ids []string
	for _, s := range m.sessions {
		if !seen[s.CommunityID] {
			seen[s.CommunityID] = true
			ids = append(ids, s.CommunityID)
		}
	}
	return ids, nil
}

// openCount reports open sessions for a scope, for invariant checks.
func (m *memStore) openCount(userID, communityID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.CommunityID == communityID && s.EndTime == nil {
			n++
		}
	}
	return n
}
