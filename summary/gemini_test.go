package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wardwatch-be/lifecycle"
)

var testStats = lifecycle.WardStats{
	Ward:           "ward-34",
	Total:          4,
	Reported:       2,
	InProgress:     1,
	Resolved:       1,
	ResolutionRate: 25,
}

// TestFallbackTemplate checks the static sentence built from the counts.
func TestFallbackTemplate(t *testing.T) {
	text := Fallback("Ward 34-Narhe Wadgaon Budruk", testStats)
	for _, want := range []string{"Ward 34-Narhe Wadgaon Budruk", "4 issues", "2 reported", "1 resolved", "25%"} {
		if !strings.Contains(text, want) {
			t.Errorf("fallback %q missing %q", text, want)
		}
	}

	empty := Fallback("Ward 36-Sahkarnagar Padmavati", lifecycle.WardStats{})
	if !strings.Contains(empty, "No issues reported") {
		t.Errorf("empty fallback = %q", empty)
	}
}

// TestWardSummaryWithoutKeyUsesFallback ensures a keyless client never calls
// out.
func TestWardSummaryWithoutKeyUsesFallback(t *testing.T) {
	c := NewClient("", "gemini-1.5-flash")
	got := c.WardSummary(context.Background(), "Ward 34", testStats)
	if got != Fallback("Ward 34", testStats) {
		t.Errorf("expected fallback, got %q", got)
	}
}

// TestWardSummaryUsesModelText checks the happy path against a stub server.
func TestWardSummaryUsesModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Ward 34 is doing well."}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash")
	c.baseURL = srv.URL

	got := c.WardSummary(context.Background(), "Ward 34", testStats)
	if got != "Ward 34 is doing well." {
		t.Errorf("summary = %q", got)
	}
}

// TestWardSummaryDegradesOnServerError ensures remote failures are silent.
func TestWardSummaryDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash")
	c.baseURL = srv.URL

	got := c.WardSummary(context.Background(), "Ward 34", testStats)
	if got != Fallback("Ward 34", testStats) {
		t.Errorf("expected fallback, got %q", got)
	}
}

// TestWardSummaryDegradesOnEmptyCandidates covers a 200 with no text.
func TestWardSummaryDegradesOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash")
	c.baseURL = srv.URL

	got := c.WardSummary(context.Background(), "Ward 34", testStats)
	if got != Fallback("Ward 34", testStats) {
		t.Errorf("expected fallback, got %q", got)
	}
}

// TestBuildPromptIncludesCounts keeps the prompt aligned with the stats.
func TestBuildPromptIncludesCounts(t *testing.T) {
	prompt := BuildPrompt("Ward 34", testStats)
	for _, want := range []string{"Ward: Ward 34", "Total issues: 4", "Reported: 2", "Resolved: 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
