package model

import "time"

// FeedEventType identifies an admin live-feed event.
type FeedEventType string

const (
	FeedEnrollmentRequested     FeedEventType = "enrollment.requested"
	FeedEnrollmentStatusChanged FeedEventType = "enrollment.status_changed"
	FeedContactReceived         FeedEventType = "contact.received"
)

// FeedEvent is published to admins connected to the live feed.
type FeedEvent struct {
	Type    FeedEventType `json:"type"`
	ID      string        `json:"id"`
	At      time.Time     `json:"at"`
	Summary string        `json:"summary"`
}
