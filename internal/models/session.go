package models

// StudySession is one contiguous timed study interval for a user within a
// community. Timestamps are epoch milliseconds; a nil EndTime means the
// session is still in progress.
type StudySession struct {
	ID          int64   `json:"id"`
	UserID      string  `json:"user_id"`
	CommunityID string  `json:"community_id"`
	Subject     string  `json:"subject"`
	StartTime   int64   `json:"start_time"`
	EndTime     *int64  `json:"end_time,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Active reports whether the session has not been stopped yet.
func (s *StudySession) Active() bool {
	return s.EndTime == nil
}

// Duration returns the recorded length in milliseconds, or 0 for a session
// that is still in progress.
func (s *StudySession) Duration() int64 {
	if s.EndTime == nil {
		return 0
	}
	return *s.EndTime - s.StartTime
}
