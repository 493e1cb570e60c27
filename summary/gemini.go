// Package summary produces the ward advisory text. The hosted model is
// best-effort and purely cosmetic: any failure falls back to a templated
// sentence built from the aggregation numbers.
package summary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"wardwatch-be/lifecycle"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generateContent endpoint.
type Client struct {
	APIKey string
	Model  string
	HTTP   *http.Client

	baseURL string
}

// NewClient builds a client. An empty apiKey disables the remote call and
// every summary uses the fallback.
func NewClient(apiKey, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// BuildPrompt renders the advisory prompt for a ward from its stats.
func BuildPrompt(wardName string, stats lifecycle.WardStats) string {
	return fmt.Sprintf(`You are summarizing civic issues for citizens.

Ward: %s
Total issues: %d
Reported: %d
Resolved: %d

Give a friendly 2-3 line summary. Mention performance and improvement areas.
Use a positive, civic tone.
`, wardName, stats.Total, stats.Reported, stats.Resolved)
}

// Fallback is the templated sentence used when the model is unreachable.
func Fallback(wardName string, stats lifecycle.WardStats) string {
	if stats.Total == 0 {
		return fmt.Sprintf("No issues reported in %s yet.", wardName)
	}
	return fmt.Sprintf("%s has %d issues on record: %d reported, %d in progress and %d resolved (%d%% resolution rate).",
		wardName, stats.Total, stats.Reported, stats.InProgress, stats.Resolved, stats.ResolutionRate)
}

// WardSummary returns advisory text for a ward. It never returns an error:
// remote failures degrade silently to the fallback.
func (c *Client) WardSummary(ctx context.Context, wardName string, stats lifecycle.WardStats) string {
	if c.APIKey == "" {
		return Fallback(wardName, stats)
	}

	text, err := c.generate(ctx, BuildPrompt(wardName, stats))
	if err != nil {
		log.Printf("Ward summary generation failed, using fallback: %v", err)
		return Fallback(wardName, stats)
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out generateResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
