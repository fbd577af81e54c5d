// Package services holds the event lifecycle and participation rules and the
// user profile sync. Persistence is reached through the interfaces below.
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/store"
)

// EventStore is the persistence contract for events. Implementations return
// *models.Error values only.
type EventStore interface {
	Insert(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	Find(ctx context.Context, f store.EventFilter, page store.Page) ([]models.Event, error)
	Count(ctx context.Context, f store.EventFilter) (int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields models.EventFields, now time.Time) (*models.Event, error)
	AddParticipant(ctx context.Context, id primitive.ObjectID, p models.Participant) (*models.Event, error)
}

// UserStore is the persistence contract for user profiles.
type UserStore interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Upsert(ctx context.Context, u store.UserUpsert) (*models.User, error)
}

// Recorder receives domain counters. metrics.Collector implements it.
type Recorder interface {
	EventCreated(eventType models.EventType)
	EventJoined()
	JoinRejected(code string)
	UserSynced()
}

// JoinNotifier is told about successful joins, e.g. to send a confirmation.
type JoinNotifier interface {
	NotifyJoined(ctx context.Context, event *models.Event, p models.Participant) error
}

type nopRecorder struct{}

func (nopRecorder) EventCreated(models.EventType) {}
func (nopRecorder) EventJoined() {}
func (nopRecorder) JoinRejected(string) {}
func (nopRecorder) UserSynced() {}
