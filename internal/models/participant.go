package models

import (
	"time"
)

// Participant represents a person taking part in the campaign, keyed by normalized phone number
type Participant struct {
	ID        string       `bson:"-" json:"id,omitempty"` // Backing store handle
	Phone     string       `bson:"_id" json:"phone"`
	HasPlayed bool         `bson:"hasPlayed" json:"hasPlayed"`
	Award     *AwardMarker `bson:"award,omitempty" json:"award,omitempty"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// AwardMarker is the persisted proof that a participant has received an outcome
type AwardMarker struct {
	PrizeID string `bson:"prizeId,omitempty" json:"prizeId,omitempty"`
	Label   string `bson:"label" json:"label"`
	Date    string `bson:"date" json:"date"`     // YYYY-MM-DD, UTC
	Number  int    `bson:"number" json:"number"` // Sequence number of the award for that prize
}

// AwardDateLayout is the layout used for AwardMarker.Date
const AwardDateLayout = "2006-01-02"
