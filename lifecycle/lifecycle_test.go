package lifecycle

import (
	"errors"
	"testing"
	"time"

	"wardwatch-be/models"
)

const threshold = 72 * time.Hour

func newTestIssue(status models.IssueStatus, reportedAt time.Time) models.Issue {
	return models.Issue{
		Title:       "Pothole on Main St",
		Description: "Large pothole",
		Category:    models.RoadDamage,
		Status:      status,
		Ward:        "ward-34",
		UpvotedBy:   []string{},
		ReportedAt:  reportedAt,
		UpdatedAt:   reportedAt,
	}
}

// TestCanTransition covers the full status state machine.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.IssueStatus
		want     bool
	}{
		{models.Reported, models.InProgress, true},
		{models.Reported, models.Resolved, true},
		{models.InProgress, models.Resolved, true},
		{models.Reported, models.Reported, false},
		{models.InProgress, models.Reported, false},
		{models.InProgress, models.InProgress, false},
		{models.Resolved, models.Reported, false},
		{models.Resolved, models.InProgress, false},
		{models.Resolved, models.Resolved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// TestApplyTransitionResolve ensures resolving sets ResolvedAt and clears the
// overdue flag no matter how old the issue is.
func TestApplyTransitionResolve(t *testing.T) {
	now := time.Now()
	issue := newTestIssue(models.Reported, now.Add(-30*24*time.Hour))
	issue.IsOverdue = true

	if err := ApplyTransition(&issue, models.Resolved, models.Authority, now); err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if issue.Status != models.Resolved {
		t.Errorf("status = %s, want resolved", issue.Status)
	}
	if issue.ResolvedAt == nil || !issue.ResolvedAt.Equal(now) {
		t.Errorf("resolvedAt = %v, want %v", issue.ResolvedAt, now)
	}
	if issue.IsOverdue {
		t.Error("resolved issue must never be overdue")
	}
	if !issue.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", issue.UpdatedAt, now)
	}
}

// TestApplyTransitionRejectsSameStatus ensures a no-op transition fails.
func TestApplyTransitionRejectsSameStatus(t *testing.T) {
	now := time.Now()
	issue := newTestIssue(models.InProgress, now)

	err := ApplyTransition(&issue, models.InProgress, models.Authority, now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// TestApplyTransitionRejectsBackward ensures resolved is terminal.
func TestApplyTransitionRejectsBackward(t *testing.T) {
	now := time.Now()
	issue := newTestIssue(models.Resolved, now.Add(-time.Hour))

	for _, to := range []models.IssueStatus{models.Reported, models.InProgress} {
		if err := ApplyTransition(&issue, to, models.Authority, now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("resolved -> %s: expected ErrInvalidTransition, got %v", to, err)
		}
	}
}

// TestApplyTransitionRequiresAuthority ensures citizens cannot move status.
func TestApplyTransitionRequiresAuthority(t *testing.T) {
	now := time.Now()
	issue := newTestIssue(models.Reported, now)

	err := ApplyTransition(&issue, models.InProgress, models.Citizen, now)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if issue.Status != models.Reported {
		t.Errorf("status changed to %s on denied transition", issue.Status)
	}
}

// TestOverdue checks the age rule and the resolved exclusion.
func TestOverdue(t *testing.T) {
	now := time.Now()

	fresh := newTestIssue(models.Reported, now.Add(-time.Hour))
	if Overdue(&fresh, now, threshold) {
		t.Error("one-hour-old issue should not be overdue")
	}

	stale := newTestIssue(models.InProgress, now.Add(-threshold-time.Minute))
	if !Overdue(&stale, now, threshold) {
		t.Error("issue past the threshold should be overdue")
	}

	resolved := newTestIssue(models.Resolved, now.Add(-30*24*time.Hour))
	if Overdue(&resolved, now, threshold) {
		t.Error("resolved issue must never be overdue regardless of age")
	}
}

// TestRefreshOverridesStoredFlag ensures a stale stored flag never wins over
// the derivation.
func TestRefreshOverridesStoredFlag(t *testing.T) {
	now := time.Now()
	issue := newTestIssue(models.Reported, now.Add(-time.Hour))
	issue.IsOverdue = true // stale stored value

	Refresh(&issue, now, threshold)
	if issue.IsOverdue {
		t.Error("Refresh kept a stale overdue flag on a fresh issue")
	}
}

// TestToggleUpvote checks the counter invariant and per-user idempotence.
func TestToggleUpvote(t *testing.T) {
	issue := newTestIssue(models.Reported, time.Now())

	voted, err := ToggleUpvote(&issue, "user-a")
	if err != nil || !voted {
		t.Fatalf("first toggle: voted=%v err=%v", voted, err)
	}
	if issue.Upvotes != 1 || len(issue.UpvotedBy) != 1 {
		t.Fatalf("after vote: upvotes=%d set=%v", issue.Upvotes, issue.UpvotedBy)
	}

	voted, err = ToggleUpvote(&issue, "user-b")
	if err != nil || !voted {
		t.Fatalf("second user toggle: voted=%v err=%v", voted, err)
	}

	// Toggling twice by the same user returns to the prior state.
	voted, err = ToggleUpvote(&issue, "user-a")
	if err != nil || voted {
		t.Fatalf("untoggle: voted=%v err=%v", voted, err)
	}
	if issue.Upvotes != 1 || issue.HasUpvoted("user-a") {
		t.Fatalf("after untoggle: upvotes=%d set=%v", issue.Upvotes, issue.UpvotedBy)
	}

	if issue.Upvotes != len(issue.UpvotedBy) {
		t.Errorf("invariant broken: upvotes=%d, |upvotedBy|=%d", issue.Upvotes, len(issue.UpvotedBy))
	}
}

// TestToggleUpvoteInvariantUnderSequences runs a longer toggle sequence and
// checks the counter always equals the set cardinality.
func TestToggleUpvoteInvariantUnderSequences(t *testing.T) {
	issue := newTestIssue(models.Reported, time.Now())
	sequence := []string{"a", "b", "a", "c", "b", "b", "a", "c", "c", "a"}

	for _, user := range sequence {
		if _, err := ToggleUpvote(&issue, user); err != nil {
			t.Fatalf("toggle %q: %v", user, err)
		}
		if issue.Upvotes != len(issue.UpvotedBy) {
			t.Fatalf("invariant broken after %q: upvotes=%d, |upvotedBy|=%d", user, issue.Upvotes, len(issue.UpvotedBy))
		}
	}
}

// TestToggleUpvoteRejectsAnonymous ensures an empty user id is refused.
func TestToggleUpvoteRejectsAnonymous(t *testing.T) {
	issue := newTestIssue(models.Reported, time.Now())
	if _, err := ToggleUpvote(&issue, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// TestCanSubmit covers both submission policies.
func TestCanSubmit(t *testing.T) {
	if !CanSubmit(models.Citizen, false) {
		t.Error("citizen must be allowed under the strict policy")
	}
	if CanSubmit(models.Authority, false) {
		t.Error("authority must be rejected under the strict policy")
	}
	if !CanSubmit(models.Authority, true) {
		t.Error("authority must be allowed under the lenient policy")
	}
	if CanSubmit("", true) {
		t.Error("unknown role must be rejected even under the lenient policy")
	}
}
