package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventTypeCleanup    EventType = "Cleanup"
	EventTypePlantation EventType = "Plantation"
	EventTypeDonation   EventType = "Donation"
	EventTypeEducation  EventType = "Education"
	EventTypeHealthcare EventType = "Healthcare"
	EventTypeOther      EventType = "Other"
)

// EventTypes lists every accepted event type in display order.
var EventTypes = []EventType{
	EventTypeCleanup,
	EventTypePlantation,
	EventTypeDonation,
	EventTypeEducation,
	EventTypeHealthcare,
	EventTypeOther,
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UserRef is a profile snapshot embedded in an event. It is copied when the
// event is created or joined and never re-synced afterwards.
type UserRef struct {
	UID         string `bson:"uid" json:"uid"`
	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"displayName" json:"displayName"`
	PhotoURL    string `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
}

type Participant struct {
	UID         string    `bson:"uid" json:"uid"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	PhotoURL    string    `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	JoinedAt    time.Time `bson:"joinedAt" json:"joinedAt"`
}

type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	EventType    EventType          `bson:"eventType" json:"eventType"`
	Thumbnail    string             `bson:"thumbnail" json:"thumbnail"`
	Location     string             `bson:"location" json:"location"`
	EventDate    time.Time          `bson:"eventDate" json:"eventDate"`
	Creator      UserRef            `bson:"creator" json:"creator"`
	Participants []Participant      `bson:"participants" json:"participants"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StoredTime returns t as MongoDB keeps it: UTC with millisecond precision.
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// HasParticipant reports whether uid already joined the event.
func (e *Event) HasParticipant(uid string) bool {
	for _, p := range e.Participants {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// EventFields is the mutable part of an event, shared by create and update.
type EventFields struct {
	Title       string
	Description string
	EventType   EventType
	Thumbnail   string
	Location    string
	EventDate   time.Time
}

// EventPage is one page of a filtered event listing.
type EventPage struct {
	Events      []Event `json:"events"`
	Total       int64   `json:"total"`
	TotalPages  int64   `json:"totalPages"`
	CurrentPage int64   `json:"currentPage"`
}
