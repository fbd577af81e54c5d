package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/helping-hands-go/models"
)

// EventFilter selects events. Zero fields do not constrain the query.
type EventFilter struct {
	EventType      models.EventType
	Search         string
	From           time.Time // eventDate >= From
	CreatorUID     string
	ParticipantUID string
}

func (f EventFilter) toBSON() bson.M {
	filter := bson.M{}
	if !f.From.IsZero() {
		filter["eventDate"] = bson.M{"$gte": f.From}
	}
	if f.EventType != "" {
		filter["eventType"] = f.EventType
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.CreatorUID != "" {
		filter["creator.uid"] = f.CreatorUID
	}
	if f.ParticipantUID != "" {
		filter["participants.uid"] = f.ParticipantUID
	}
	return filter
}

// Page bounds a Find call. A zero Limit returns every match.
type Page struct {
	Skip  int64
	Limit int64
}

type EventRepo struct {
	conn *Mongo
	col  *mongo.Collection
}

// ---------------- CREATE ----------------
func (r *EventRepo) Insert(ctx context.Context, e *models.Event) error {
	if err := r.conn.guard(); err != nil {
		return err
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Participants == nil {
		e.Participants = []models.Participant{}
	}
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return mapError("insert event", err)
	}
	return nil
}

// ---------------- READ ----------------
func (r *EventRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}
	var event models.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, mapError("find event", err)
	}
	normalize(&event)
	return &event, nil
}

// Find returns matching events sorted ascending by eventDate.
func (r *EventRepo) Find(ctx context.Context, f EventFilter, page Page) ([]models.Event, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}, {Key: "_id", Value: 1}})
	if page.Skip > 0 {
		opts.SetSkip(page.Skip)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}

	cursor, err := r.col.Find(ctx, f.toBSON(), opts)
	if err != nil {
		return nil, mapError("find events", err)
	}

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, mapError("decode events", err)
	}
	for i := range events {
		normalize(&events[i])
	}
	return events, nil
}

func (r *EventRepo) Count(ctx context.Context, f EventFilter) (int64, error) {
	if err := r.conn.guard(); err != nil {
		return 0, err
	}
	n, err := r.col.CountDocuments(ctx, f.toBSON())
	if err != nil {
		return 0, mapError("count events", err)
	}
	return n, nil
}

// ---------------- UPDATE ----------------

// UpdateFields overwrites the mutable fields and returns the stored result.
func (r *EventRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields models.EventFields, now time.Time) (*models.Event, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"title":       fields.Title,
		"description": fields.Description,
		"eventType":   fields.EventType,
		"thumbnail":   fields.Thumbnail,
		"location":    fields.Location,
		"eventDate":   fields.EventDate,
		"updatedAt":   now,
	}}

	var updated models.Event
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, mapError("update event", err)
	}
	normalize(&updated)
	return &updated, nil
}

// AddParticipant appends p unless a participant with the same uid exists. The
// check and the push happen in one document update, so concurrent joins by
// the same user cannot both succeed.
func (r *EventRepo) AddParticipant(ctx context.Context, id primitive.ObjectID, p models.Participant) (*models.Event, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":              id,
		"participants.uid": bson.M{"$ne": p.UID},
	}
	update := bson.M{
		"$push": bson.M{"participants": p},
		"$set":  bson.M{"updatedAt": p.JoinedAt},
	}

	var updated models.Event
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		normalize(&updated)
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapError("join event", err)
	}

	// Nothing matched: either the event is gone or uid is already listed.
	n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return nil, mapError("join event", cerr)
	}
	if n == 0 {
		return nil, models.NewEventNotFoundError()
	}
	return nil, models.NewAlreadyJoinedError()
}

func normalize(e *models.Event) {
	if e.Participants == nil {
		e.Participants = []models.Participant{}
	}
}
