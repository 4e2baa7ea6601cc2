package server

import (
	"net/http"
	"time"
)

// Activity is one entry in the recent activity feed.
type Activity struct {
	Email  string    `json:"email"`
	Action string    `json:"action"`
	Score  *float64  `json:"score"`
	Time   time.Time `json:"time"`
}

const (
	actionCompleted = "Completed interview"
	actionInvited   = "Interview invite sent"
)

// handleDashboardMetrics handles GET /api/dashboard/metrics.
func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CandidateStats(r.Context())
	if err != nil {
		s.failure(w, "failed to compute metrics", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleRecentActivity handles GET /api/dashboard/activity/recent.
func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.store.RecentCandidates(r.Context(), recentActivityLimit)
	if err != nil {
		s.failure(w, "failed to load recent activity", err)
		return
	}

	feed := make([]Activity, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		a := Activity{
			Email:  c.Email,
			Action: actionInvited,
			Score:  c.MeanScore(),
			Time:   c.UploadedAt,
		}
		if c.InterviewCompleted {
			a.Action = actionCompleted
		}
		if c.CompletedAt != nil {
			a.Time = *c.CompletedAt
		}
		feed = append(feed, a)
	}
	s.jsonResponse(w, http.StatusOK, feed)
}
