// Package workers holds background loops that run beside the HTTP server.
package workers

import (
	"context"
	"log"
	"time"

	"wardwatch-be/config"
	"wardwatch-be/eventbus"
	"wardwatch-be/events"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const overdueNotifiedSet = "overdue-notified"

// StartOverdueWatcher periodically scans for issues that crossed the overdue
// threshold and publishes one issue.overdue event per issue. The overdue flag
// itself is derived at read time; this loop only notifies. Dedupe lives in a
// Redis set so restarts do not re-alert.
func StartOverdueWatcher(ctx context.Context, bus *eventbus.RedisEventBus, interval time.Duration) {
	log.Println("[OVERDUE_WORKER] Starting overdue watcher...")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OVERDUE_WORKER] Stopping")
			return
		case <-ticker.C:
			checkOverdue(ctx, bus)
		}
	}
}

// checkOverdue finds newly-overdue issues and publishes notifications
func checkOverdue(ctx context.Context, bus *eventbus.RedisEventBus) {
	cfg := config.Get()
	now := time.Now()
	cutoff := now.Add(-cfg.OverdueThreshold())

	scanCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection("issues").Find(scanCtx, bson.M{
		"status":     bson.M{"$ne": "resolved"},
		"reportedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		log.Printf("[OVERDUE_WORKER] Error querying issues: %v", err)
		return
	}
	defer cursor.Close(scanCtx)

	var overdue []struct {
		ID         primitive.ObjectID `bson:"_id"`
		Ward       string             `bson:"ward"`
		ReportedAt time.Time          `bson:"reportedAt"`
	}
	if err := cursor.All(scanCtx, &overdue); err != nil {
		log.Printf("[OVERDUE_WORKER] Error decoding issues: %v", err)
		return
	}

	for _, issue := range overdue {
		issueID := issue.ID.Hex()

		// SAdd returns 0 when the id was already in the set
		added, err := config.RedisClient.SAdd(scanCtx, overdueNotifiedSet, issueID).Result()
		if err != nil {
			log.Printf("[OVERDUE_WORKER] Error marking issue %s: %v", issueID, err)
			continue
		}
		if added == 0 {
			continue
		}

		log.Printf("[OVERDUE_WORKER] Issue %s overdue (reported %s)", issueID, issue.ReportedAt.Format(time.RFC3339))

		payload := events.IssueOverduePayload{
			IssueID:    issueID,
			Ward:       issue.Ward,
			ReportedAt: issue.ReportedAt,
			DetectedAt: now,
		}

		event, err := events.NewEvent(events.IssueOverdue, issueID, payload)
		if err != nil {
			log.Printf("[OVERDUE_WORKER] Error building event for %s: %v", issueID, err)
			continue
		}
		if err := bus.Publish(scanCtx, event); err != nil {
			log.Printf("[OVERDUE_WORKER] Error publishing event for %s: %v", issueID, err)
		}
	}
}
