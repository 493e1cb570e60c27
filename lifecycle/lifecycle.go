// Package lifecycle owns the rules for issue state: valid status transitions,
// upvote idempotence, overdue derivation and ward-scoped aggregation. The
// functions here are pure over models.Issue; persistence of their outcomes is
// the controllers' job.
package lifecycle

import (
	"time"

	"wardwatch-be/models"
)

// CanTransition reports whether the status state machine allows from -> to.
// The only forward paths are reported -> in-progress and
// reported|in-progress -> resolved; resolved is terminal.
func CanTransition(from, to models.IssueStatus) bool {
	switch {
	case from == models.Reported && to == models.InProgress:
		return true
	case (from == models.Reported || from == models.InProgress) && to == models.Resolved:
		return true
	}
	return false
}

// ApplyTransition moves the issue to the target status. Only authority
// actors may transition; same-status and backward moves fail with
// ErrInvalidTransition. Resolving sets ResolvedAt and forces IsOverdue false
// regardless of age.
func ApplyTransition(issue *models.Issue, to models.IssueStatus, role models.UserRole, now time.Time) error {
	if role != models.Authority {
		return ErrPermissionDenied
	}
	if to == issue.Status || !CanTransition(issue.Status, to) {
		return ErrInvalidTransition
	}

	issue.Status = to
	issue.UpdatedAt = now
	if to == models.Resolved {
		resolvedAt := now
		issue.ResolvedAt = &resolvedAt
		issue.IsOverdue = false
	}
	return nil
}

// Overdue derives the overdue flag: a non-resolved issue is overdue once its
// age exceeds the threshold. Resolved issues are never overdue.
func Overdue(issue *models.Issue, now time.Time, threshold time.Duration) bool {
	if issue.Status == models.Resolved {
		return false
	}
	return now.Sub(issue.ReportedAt) > threshold
}

// Refresh recomputes the derived fields in place. Call it on every read path
// so a stale stored flag never wins over the age rule.
func Refresh(issue *models.Issue, now time.Time, threshold time.Duration) {
	issue.IsOverdue = Overdue(issue, now, threshold)
}

// ToggleUpvote flips userID's vote on the issue and keeps the counter equal
// to the set cardinality. Returns true when the user now holds a vote.
func ToggleUpvote(issue *models.Issue, userID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthorized
	}

	if issue.HasUpvoted(userID) {
		kept := issue.UpvotedBy[:0]
		for _, id := range issue.UpvotedBy {
			if id != userID {
				kept = append(kept, id)
			}
		}
		issue.UpvotedBy = kept
		issue.Upvotes = len(issue.UpvotedBy)
		return false, nil
	}

	issue.UpvotedBy = append(issue.UpvotedBy, userID)
	issue.Upvotes = len(issue.UpvotedBy)
	return true, nil
}

// CanSubmit reports whether the role may file new issues under the
// configured submission policy.
func CanSubmit(role models.UserRole, allowAnyRole bool) bool {
	if allowAnyRole {
		return role == models.Citizen || role == models.Authority
	}
	return role == models.Citizen
}
