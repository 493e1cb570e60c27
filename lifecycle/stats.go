package lifecycle

import (
	"math"
	"time"

	"wardwatch-be/models"
)

// WardStats are the on-demand counts for one ward (or every ward at once).
type WardStats struct {
	Ward           string `json:"ward"`
	Total          int    `json:"total"`
	Reported       int    `json:"reported"`
	InProgress     int    `json:"inProgress"`
	Resolved       int    `json:"resolved"`
	Overdue        int    `json:"overdue"`
	ResolutionRate int    `json:"resolutionRate"`
}

// ComputeWardStats filters issues to the given ward (models.WardAll selects
// everything) and counts per status plus overdue. ResolutionRate is
// resolved/total as a rounded percent; emptyRate is reported when the ward
// has no issues at all.
func ComputeWardStats(issues []models.Issue, wardID string, now time.Time, threshold time.Duration, emptyRate int) WardStats {
	stats := WardStats{Ward: wardID}

	for i := range issues {
		issue := &issues[i]
		if wardID != models.WardAll && issue.Ward != wardID {
			continue
		}
		stats.Total++
		switch issue.Status {
		case models.Reported:
			stats.Reported++
		case models.InProgress:
			stats.InProgress++
		case models.Resolved:
			stats.Resolved++
		}
		if Overdue(issue, now, threshold) {
			stats.Overdue++
		}
	}

	if stats.Total == 0 {
		stats.ResolutionRate = emptyRate
		return stats
	}
	stats.ResolutionRate = int(math.Round(float64(stats.Resolved) / float64(stats.Total) * 100))
	return stats
}
