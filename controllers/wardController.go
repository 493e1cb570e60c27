package controllers

import (
	"context"
	"net/http"
	"time"

	"wardwatch-be/config"
	"wardwatch-be/lifecycle"
	"wardwatch-be/models"
	"wardwatch-be/summary"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// SummaryClient generates the ward advisory text. Wired in main; a nil
// client still produces the templated fallback.
var SummaryClient *summary.Client

// ListWards returns the static ward directory
func ListWards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"wards": models.Wards})
}

// loadWardIssues fetches the issues scoped to a ward ("all" loads everything).
func loadWardIssues(ctx context.Context, wardID string) ([]models.Issue, error) {
	filter := bson.M{}
	if wardID != models.WardAll {
		filter["ward"] = wardID
	}

	cursor, err := issueCollection().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// GetWardStats returns the on-demand counts for one ward
func GetWardStats(c *gin.Context) {
	wardID := c.Param("id")
	if wardID != models.WardAll && !models.IsValidWard(wardID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ward not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := loadWardIssues(ctx, wardID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	cfg := config.Get()
	stats := lifecycle.ComputeWardStats(issues, wardID, time.Now(), cfg.OverdueThreshold(), cfg.EmptyWardResolutionRate)

	c.JSON(http.StatusOK, stats)
}

// GetWardSummary returns the advisory text for a ward. Model failures are
// invisible to the caller: the response always carries a summary.
func GetWardSummary(c *gin.Context) {
	wardID := c.Param("id")
	ward, ok := models.FindWard(wardID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ward not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	issues, err := loadWardIssues(ctx, wardID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	cfg := config.Get()
	stats := lifecycle.ComputeWardStats(issues, wardID, time.Now(), cfg.OverdueThreshold(), cfg.EmptyWardResolutionRate)

	text := summary.Fallback(ward.Name, stats)
	if SummaryClient != nil {
		text = SummaryClient.WardSummary(ctx, ward.Name, stats)
	}

	c.JSON(http.StatusOK, gin.H{
		"ward":    wardID,
		"summary": text,
		"stats":   stats,
	})
}
