package pipeline

import "github.com/jonathan/careerpilot/internal/db"

// Counts buckets candidates by effective status. Candidates in any other
// status, such as Uploaded, count toward Total only.
type Counts struct {
	Total      int `json:"total"`
	Invited    int `json:"invited"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
}

// Tally counts candidates by effective status.
func Tally(candidates []db.Candidate) Counts {
	counts := Counts{Total: len(candidates)}
	for i := range candidates {
		switch candidates[i].EffectiveStatus() {
		case db.StatusInvited:
			counts.Invited++
		case db.StatusCompleted:
			counts.Completed++
		case db.StatusInProgress:
			counts.InProgress++
		}
	}
	return counts
}
