package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"wardwatch-be/config"
	"wardwatch-be/eventbus"
	"wardwatch-be/events"
	"wardwatch-be/lifecycle"
	"wardwatch-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventBus carries change notifications after acknowledged store mutations.
// Wired in main; handlers tolerate it being nil (notifications skipped).
var EventBus *eventbus.RedisEventBus

func issueCollection() *mongo.Collection {
	return config.GetCollection("issues")
}

func publish(eventType, issueID string, payload interface{}) {
	if EventBus == nil {
		return
	}
	event, err := events.NewEvent(eventType, issueID, payload)
	if err != nil {
		log.Printf("Error building %s event: %v", eventType, err)
		return
	}
	if err := EventBus.Publish(config.Ctx, event); err != nil {
		log.Printf("Error publishing %s event: %v", eventType, err)
	}
}

// clearOverdueMark drops the issue from the overdue watcher's dedupe set so
// a later report with a reused id would alert again.
func clearOverdueMark(issueID string) {
	if config.RedisClient == nil {
		return
	}
	if err := config.RedisClient.SRem(config.Ctx, "overdue-notified", issueID).Err(); err != nil {
		log.Printf("Error clearing overdue mark for %s: %v", issueID, err)
	}
}

func sessionUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

func sessionRole(c *gin.Context) models.UserRole {
	roleVal, exists := c.Get("role")
	if !exists {
		return ""
	}
	role, _ := roleVal.(string)
	return models.UserRole(role)
}

type issueResponse struct {
	models.Issue
	UserHasVoted bool                   `json:"userHasVoted"`
	ReportedBy   map[string]interface{} `json:"reportedBy"`
}

func toResponse(ctx context.Context, issue models.Issue, currentUserID string) issueResponse {
	reportedByMap := map[string]interface{}{
		"id": issue.ReportedBy,
	}

	var reporter models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": issue.ReportedBy}).Decode(&reporter); err == nil {
		reportedByMap["name"] = reporter.Name
		reportedByMap["email"] = reporter.Email
	}

	return issueResponse{
		Issue:        issue,
		UserHasVoted: currentUserID != "" && issue.HasUpvoted(currentUserID),
		ReportedBy:   reportedByMap,
	}
}

// CreateIssue handles a new issue submission
func CreateIssue(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cfg := config.Get()
	if !lifecycle.CanSubmit(sessionRole(c), cfg.AllowAnyRoleReport) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only citizens may report issues"})
		return
	}

	reportedByID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input lifecycle.Submission
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Every invalid field is reported, not just the first. No store call is
	// made for a rejected submission.
	if ve := lifecycle.ValidateSubmission(input); ve != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
		return
	}

	now := time.Now()
	issue := models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    models.IssueCategory(input.Category),
		Status:      models.Reported,
		Ward:        input.Ward,
		Location:    input.Location,
		PhotoURL:    input.PhotoURL,
		Upvotes:     0,
		UpvotedBy:   []string{},
		ReportedBy:  reportedByID,
		ReportedAt:  now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := issueCollection().InsertOne(ctx, issue); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create issue"})
		return
	}

	publish(events.IssueCreated, issue.ID.Hex(), events.IssueCreatedPayload{
		IssueID:    issue.ID.Hex(),
		ReportedBy: userID,
		Ward:       issue.Ward,
		Category:   string(issue.Category),
		Title:      issue.Title,
		ReportedAt: issue.ReportedAt,
	})

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues handles retrieving issues with filtering and pagination
func GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Get()

	// Parse query parameters
	ward := c.Query("ward")
	category := c.Query("category")
	status := c.Query("status")
	search := c.Query("search")
	sortParam := c.DefaultQuery("sort", "newest")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	// Build query filter
	filter := bson.M{}

	if ward != "" && ward != models.WardAll {
		filter["ward"] = ward
	}

	if category != "" && category != "all" {
		filter["category"] = category
	}

	if status != "" && status != "all" {
		filter["status"] = status
	}

	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	// Calculate pagination
	skip := (page - 1) * limit

	// Sort options
	var sortOptions bson.D
	switch sortParam {
	case "oldest":
		sortOptions = bson.D{{Key: "reportedAt", Value: 1}}
	case "upvotes":
		sortOptions = bson.D{{Key: "upvotes", Value: -1}, {Key: "reportedAt", Value: -1}}
	case "newest":
		fallthrough
	default:
		sortOptions = bson.D{{Key: "reportedAt", Value: -1}}
	}

	// Get total count for pagination
	totalCount, err := issueCollection().CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to count issues"})
		return
	}

	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := issueCollection().Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	currentUserID, _ := sessionUserID(c)
	now := time.Now()

	responses := make([]issueResponse, 0, len(issues))
	for i := range issues {
		lifecycle.Refresh(&issues[i], now, cfg.OverdueThreshold())
		responses = append(responses, toResponse(ctx, issues[i], currentUserID))
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      responses,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetIssue retrieves an issue by its ID
func GetIssue(c *gin.Context) {
	idParam := c.Param("id")
	issueID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	lifecycle.Refresh(&issue, time.Now(), config.Get().OverdueThreshold())

	currentUserID, _ := sessionUserID(c)
	c.JSON(http.StatusOK, toResponse(ctx, issue, currentUserID))
}

// GetIssuesByUser retrieves all issues reported by the authenticated user
func GetIssuesByUser(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "reportedAt", Value: -1}})
	cursor, err := issueCollection().Find(ctx, bson.M{"reportedBy": userObjID}, findOptions)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	cfg := config.Get()
	now := time.Now()
	responses := make([]issueResponse, 0, len(issues))
	for i := range issues {
		lifecycle.Refresh(&issues[i], now, cfg.OverdueThreshold())
		responses = append(responses, toResponse(ctx, issues[i], userID))
	}

	c.JSON(http.StatusOK, responses)
}

// UpdateIssueStatus moves an issue through the status state machine.
// Authority only; same-status and backward moves are rejected.
func UpdateIssueStatus(c *gin.Context) {
	idParam := c.Param("id")
	issueID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	if _, ok := sessionUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Status             string  `json:"status" binding:"required"`
		ResolutionPhotoURL *string `json:"resolutionPhotoUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	oldStatus := issue.Status
	now := time.Now()

	if err := lifecycle.ApplyTransition(&issue, models.IssueStatus(input.Status), sessionRole(c), now); err != nil {
		switch err {
		case lifecycle.ErrPermissionDenied:
			c.JSON(http.StatusForbidden, gin.H{"error": "Authority role required"})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "from": oldStatus, "to": input.Status})
		}
		return
	}

	update := bson.M{
		"status":    issue.Status,
		"updatedAt": issue.UpdatedAt,
	}
	if issue.Status == models.Resolved {
		update["resolvedAt"] = issue.ResolvedAt
		update["isOverdue"] = false
	}
	if input.ResolutionPhotoURL != nil {
		update["resolutionPhotoUrl"] = input.ResolutionPhotoURL
		issue.ResolutionPhotoURL = input.ResolutionPhotoURL
	}

	if _, err := issueCollection().UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to update issue"})
		return
	}

	if issue.Status == models.Resolved {
		clearOverdueMark(issueID.Hex())
	}

	publish(events.IssueStatusUpdated, issueID.Hex(), events.IssueStatusUpdatedPayload{
		IssueID:    issueID.Hex(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(issue.Status),
		Ward:       issue.Ward,
		ResolvedAt: issue.ResolvedAt,
		ChangedAt:  now,
	})

	lifecycle.Refresh(&issue, now, config.Get().OverdueThreshold())
	c.JSON(http.StatusOK, issue)
}

// DeleteIssue removes an issue permanently. Authority only, irreversible.
func DeleteIssue(c *gin.Context) {
	idParam := c.Param("id")
	issueID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if sessionRole(c) != models.Authority {
		c.JSON(http.StatusForbidden, gin.H{"error": "Authority role required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if _, err := issueCollection().DeleteOne(ctx, bson.M{"_id": issueID}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to delete issue"})
		return
	}

	clearOverdueMark(issueID.Hex())

	publish(events.IssueDeleted, issueID.Hex(), events.IssueDeletedPayload{
		IssueID:   issueID.Hex(),
		Ward:      issue.Ward,
		DeletedBy: userID,
		DeletedAt: time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// ToggleUpvote flips the caller's vote on an issue. The set mutation and the
// counter increment are one filtered update, so concurrent toggles from
// different users cannot lose updates.
func ToggleUpvote(c *gin.Context) {
	idParam := c.Param("id")
	issueID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()

	// Try to add the vote; matches only when the user is not in the set.
	res, err := issueCollection().UpdateOne(ctx,
		bson.M{"_id": issueID, "upvotedBy": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"upvotedBy": userID},
			"$inc":      bson.M{"upvotes": 1},
			"$set":      bson.M{"updatedAt": now},
		})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to cast vote"})
		return
	}

	voted := res.MatchedCount == 1
	if !voted {
		// Already voted (or the issue is gone): try the inverse update.
		res, err = issueCollection().UpdateOne(ctx,
			bson.M{"_id": issueID, "upvotedBy": userID},
			bson.M{
				"$pull": bson.M{"upvotedBy": userID},
				"$inc":  bson.M{"upvotes": -1},
				"$set":  bson.M{"updatedAt": now},
			})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to remove vote"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
	}

	var issue models.Issue
	if err := issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	publish(events.IssueUpvoted, issueID.Hex(), events.IssueUpvotedPayload{
		IssueID: issueID.Hex(),
		UserID:  userID,
		Voted:   voted,
		Upvotes: issue.Upvotes,
		At:      now,
	})

	message := "Vote cast successfully"
	if !voted {
		message = "Vote removed successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      message,
		"voted":        voted,
		"votes":        issue.Upvotes,
		"userHasVoted": voted,
	})
}

// GetIssueAnalytics returns analytical data about issues
func GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Get()
	now := time.Now()

	// Get issues by category using aggregation
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := issueCollection().Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to get category analytics"})
		return
	}
	defer categoryCursor.Close(ctx)

	var issuesByCategory []bson.M
	if err := categoryCursor.All(ctx, &issuesByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode category analytics"})
		return
	}

	// Get last 7 days data
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := issueCollection().CountDocuments(ctx, bson.M{
			"reportedAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Top upvoted issues
	findOptions := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}, {Key: "reportedAt", Value: -1}}).
		SetLimit(5)

	cursor, err := issueCollection().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve top issues"})
		return
	}
	defer cursor.Close(ctx)

	var topIssues []models.Issue
	if err := cursor.All(ctx, &topIssues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	type topVotedIssue struct {
		ID       primitive.ObjectID `json:"id"`
		Title    string             `json:"title"`
		Category string             `json:"category"`
		Ward     string             `json:"ward"`
		Votes    int                `json:"votes"`
	}

	topVotedIssues := make([]topVotedIssue, 0, len(topIssues))
	for _, issue := range topIssues {
		topVotedIssues = append(topVotedIssues, topVotedIssue{
			ID:       issue.ID,
			Title:    issue.Title,
			Category: string(issue.Category),
			Ward:     issue.Ward,
			Votes:    issue.Upvotes,
		})
	}

	// Get total counts
	totalIssues, err := issueCollection().CountDocuments(ctx, bson.M{})
	if err != nil {
		totalIssues = 0
	}

	openIssues, err := issueCollection().CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []string{string(models.Reported), string(models.InProgress)}},
	})
	if err != nil {
		openIssues = 0
	}

	overdueIssues, err := issueCollection().CountDocuments(ctx, bson.M{
		"status":     bson.M{"$ne": string(models.Resolved)},
		"reportedAt": bson.M{"$lt": now.Add(-cfg.OverdueThreshold())},
	})
	if err != nil {
		overdueIssues = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByCategory": issuesByCategory,
		"last7Days":        last7Days,
		"topVotedIssues":   topVotedIssues,
		"totalIssues":      totalIssues,
		"openIssues":       openIssues,
		"overdueIssues":    overdueIssues,
	})
}

// RecentIssues returns the most recent issues that carry coordinates
func RecentIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	limit := 19

	filter := bson.M{
		"location.lat": bson.M{"$exists": true, "$ne": nil},
		"location.lng": bson.M{"$exists": true, "$ne": nil},
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "reportedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := issueCollection().Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to retrieve recent issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recent issues"})
		return
	}

	type issuePin struct {
		ID         string    `json:"id"`
		Title      string    `json:"title"`
		Latitude   float64   `json:"latitude"`
		Longitude  float64   `json:"longitude"`
		Address    string    `json:"address,omitempty"`
		Ward       string    `json:"ward"`
		Category   string    `json:"category,omitempty"`
		ReportedAt time.Time `json:"reportedAt,omitempty"`
	}

	var response []issuePin
	for _, issue := range issues {
		if issue.Location.HasCoordinates() {
			response = append(response, issuePin{
				ID:         issue.ID.Hex(),
				Title:      issue.Title,
				Latitude:   *issue.Location.Lat,
				Longitude:  *issue.Location.Lng,
				Address:    issue.Location.Address,
				Ward:       issue.Ward,
				Category:   string(issue.Category),
				ReportedAt: issue.ReportedAt,
			})
		}
	}

	c.JSON(http.StatusOK, response)
}
