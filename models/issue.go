package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	RoadDamage   IssueCategory = "road-damage"
	StreetLight  IssueCategory = "street-light"
	Garbage      IssueCategory = "garbage"
	WaterSupply  IssueCategory = "water-supply"
	Drainage     IssueCategory = "drainage"
	PublicSafety IssueCategory = "public-safety"
	Other        IssueCategory = "other"
)

// Categories lists every valid issue category in display order.
var Categories = []IssueCategory{
	RoadDamage, StreetLight, Garbage, WaterSupply, Drainage, PublicSafety, Other,
}

// IsValidCategory checks if category is valid
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if string(c) == category {
			return true
		}
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "reported"
	InProgress IssueStatus = "in-progress"
	Resolved   IssueStatus = "resolved"
)

// IsValidStatus checks if status is valid
func IsValidStatus(status string) bool {
	switch IssueStatus(status) {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// Location is where an issue was reported, from device geolocation or a
// manually entered address.
type Location struct {
	Lat     *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     *float64 `bson:"lng,omitempty" json:"lng,omitempty"`
	Address string   `bson:"address,omitempty" json:"address,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// IsPresent reports whether the location carries coordinates or an address.
func (l Location) IsPresent() bool {
	return l.HasCoordinates() || l.Address != ""
}

// Issue represents a civic issue reported by a citizen.
//
// Upvotes is kept equal to len(UpvotedBy) by the store-side toggle; IsOverdue
// is derived from ReportedAt on every read and is never authoritative as
// stored.
type Issue struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	Category           IssueCategory      `bson:"category" json:"category"`
	Status             IssueStatus        `bson:"status" json:"status"`
	Ward               string             `bson:"ward" json:"ward"`
	Location           Location           `bson:"location" json:"location"`
	PhotoURL           *string            `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	ResolutionPhotoURL *string            `bson:"resolutionPhotoUrl,omitempty" json:"resolutionPhotoUrl,omitempty"`
	Upvotes            int                `bson:"upvotes" json:"upvotes"`
	UpvotedBy          []string           `bson:"upvotedBy" json:"upvotedBy"`
	ReportedBy         primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	ReportedAt         time.Time          `bson:"reportedAt" json:"reportedAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt         *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	IsOverdue          bool               `bson:"isOverdue" json:"isOverdue"`
}

// HasUpvoted reports whether the given user id is in the upvote set.
func (i *Issue) HasUpvoted(userID string) bool {
	for _, id := range i.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}
