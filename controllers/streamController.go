package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"wardwatch-be/config"
	"wardwatch-be/lifecycle"
	"wardwatch-be/models"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fetchSnapshot loads the full issue collection sorted by creation time
// descending, with derived fields refreshed.
func fetchSnapshot(ctx context.Context) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "reportedAt", Value: -1}})

	cursor, err := issueCollection().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}

	cfg := config.Get()
	now := time.Now()
	for i := range issues {
		lifecycle.Refresh(&issues[i], now, cfg.OverdueThreshold())
	}
	return issues, nil
}

// StreamIssues is an SSE endpoint. It sends one full snapshot on connect,
// then a fresh snapshot after every change notification, until the client
// disconnects. Each subscriber tails the event stream independently.
func StreamIssues(c *gin.Context) {
	if EventBus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Change stream not available"})
		return
	}

	ctx := c.Request.Context()

	snapshot, err := fetchSnapshot(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load issues"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	if err := sse.Encode(c.Writer, sse.Event{Event: "snapshot", Data: snapshot}); err != nil {
		return
	}
	c.Writer.Flush()

	updates := EventBus.Subscribe(ctx)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-updates:
			if !ok {
				return false
			}

			snapshot, err := fetchSnapshot(ctx)
			if err != nil {
				// Transient store failure: keep the subscription alive and
				// send the triggering event so the client can refetch.
				sse.Encode(w, sse.Event{Event: "change", Data: event})
				return true
			}

			sse.Encode(w, sse.Event{Event: "snapshot", Data: snapshot})
			return true
		}
	})
}
