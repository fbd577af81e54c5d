package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/store"
)

// DefaultPageSize is used by ListEvents when the caller does not pick one.
const DefaultPageSize int64 = 12

const notifyTimeout = 30 * time.Second

type EventService struct {
	store    EventStore
	now      func() time.Time
	log      *slog.Logger
	metrics  Recorder
	notifier JoinNotifier
	pageSize int64
}

type EventOption func(*EventService)

func WithClock(now func() time.Time) EventOption {
	return func(s *EventService) { s.now = now }
}

func WithLogger(l *slog.Logger) EventOption {
	return func(s *EventService) { s.log = l }
}

func WithRecorder(r Recorder) EventOption {
	return func(s *EventService) { s.metrics = r }
}

func WithJoinNotifier(n JoinNotifier) EventOption {
	return func(s *EventService) { s.notifier = n }
}

func WithDefaultPageSize(n int64) EventOption {
	return func(s *EventService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func NewEventService(st EventStore, opts ...EventOption) *EventService {
	s := &EventService{
		store:    st,
		now:      time.Now,
		log:      slog.Default(),
		metrics:  nopRecorder{},
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEventsInput filters the public listing. A nil PageSize selects the
// default; Page values below 1 are treated as 1.
type ListEventsInput struct {
	EventType string
	Search    string
	Page      int64
	PageSize  *int64
}

// EventInput carries the fields accepted by CreateEvent and UpdateEvent.
// Creator is ignored on update.
type EventInput struct {
	Title       string
	Description string
	EventType   string
	Thumbnail   string
	Location    string
	EventDate   time.Time
	Creator     models.UserRef
}

// ---------------- LIST ----------------
func (s *EventService) ListEvents(ctx context.Context, in ListEventsInput) (*models.EventPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := s.pageSize
	if in.PageSize != nil {
		if *in.PageSize <= 0 {
			return nil, models.NewValidationError("page size must be greater than 0", "limit")
		}
		size = *in.PageSize
	}
	if page-1 > math.MaxInt64/size {
		return nil, models.NewValidationError("page is out of range", "page")
	}

	eventType := strings.TrimSpace(in.EventType)
	if strings.EqualFold(eventType, "all") {
		eventType = ""
	}
	filter := store.EventFilter{
		EventType: models.EventType(eventType),
		Search:    strings.TrimSpace(in.Search),
		From:      s.now(),
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	events, err := s.store.Find(ctx, filter, store.Page{Skip: (page - 1) * size, Limit: size})
	if err != nil {
		return nil, err
	}

	return &models.EventPage{
		Events:      events,
		Total:       total,
		TotalPages:  (total + size - 1) / size,
		CurrentPage: page,
	}, nil
}

// ---------------- GET ----------------
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	event, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, eventErr(err)
	}
	return event, nil
}

// ---------------- CREATE ----------------
func (s *EventService) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	now := models.StoredTime(s.now())
	fields, err := validateEvent(in, now, true)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          primitive.NewObjectID(),
		Title:       fields.Title,
		Description: fields.Description,
		EventType:   fields.EventType,
		Thumbnail:   fields.Thumbnail,
		Location:    fields.Location,
		EventDate:   fields.EventDate,
		Creator: models.UserRef{
			UID:         strings.TrimSpace(in.Creator.UID),
			Email:       strings.TrimSpace(in.Creator.Email),
			DisplayName: strings.TrimSpace(in.Creator.DisplayName),
			PhotoURL:    strings.TrimSpace(in.Creator.PhotoURL),
		},
		Participants: []models.Participant{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, event); err != nil {
		return nil, err
	}

	s.metrics.EventCreated(event.EventType)
	s.log.InfoContext(ctx, "event created",
		slog.String("event_id", event.ID.Hex()),
		slog.String("event_type", string(event.EventType)),
		slog.String("creator_uid", event.Creator.UID),
	)
	return event, nil
}

// ---------------- UPDATE ----------------
func (s *EventService) UpdateEvent(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, oid); err != nil {
		return nil, eventErr(err)
	}

	now := models.StoredTime(s.now())
	fields, err := validateEvent(in, now, false)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateFields(ctx, oid, fields, now)
	if err != nil {
		return nil, eventErr(err)
	}

	s.log.InfoContext(ctx, "event updated", slog.String("event_id", updated.ID.Hex()))
	return updated, nil
}

// ---------------- JOIN ----------------

// JoinEvent adds user to the event's participants. A user can join an event
// at most once; a second attempt fails with ALREADY_JOINED even when both
// requests race.
func (s *EventService) JoinEvent(ctx context.Context, id string, user models.UserRef) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	user.UID = strings.TrimSpace(user.UID)
	user.Email = strings.TrimSpace(user.Email)
	var missing []string
	if user.UID == "" {
		missing = append(missing, "user.uid")
	}
	if user.Email == "" {
		missing = append(missing, "user.email")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("user uid and email are required", missing...)
	}

	event, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, eventErr(err)
	}

	now := models.StoredTime(s.now())
	if event.EventDate.Before(now) {
		s.metrics.JoinRejected(models.ErrCodePastEvent)
		return nil, models.NewPastEventError()
	}
	if event.HasParticipant(user.UID) {
		s.metrics.JoinRejected(models.ErrCodeAlreadyJoined)
		return nil, models.NewAlreadyJoinedError()
	}

	p := models.Participant{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: displayNameOr(user.DisplayName, user.Email),
		PhotoURL:    strings.TrimSpace(user.PhotoURL),
		JoinedAt:    now,
	}
	updated, err := s.store.AddParticipant(ctx, oid, p)
	if err != nil {
		if code := models.CodeOf(err); code == models.ErrCodeAlreadyJoined {
			s.metrics.JoinRejected(code)
		}
		return nil, eventErr(err)
	}

	s.metrics.EventJoined()
	s.log.InfoContext(ctx, "user joined event",
		slog.String("event_id", updated.ID.Hex()),
		slog.String("uid", p.UID),
		slog.Int("participants", len(updated.Participants)),
	)
	if s.notifier != nil {
		go s.notify(updated, p)
	}
	return updated, nil
}

func (s *EventService) notify(event *models.Event, p models.Participant) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyJoined(ctx, event, p); err != nil {
		s.log.Warn("join notification failed",
			slog.String("event_id", event.ID.Hex()),
			slog.String("uid", p.UID),
			slog.String("error", err.Error()),
		)
	}
}

// ---------------- BY USER ----------------

// ListEventsByCreator returns every event uid created, soonest first.
func (s *EventService) ListEventsByCreator(ctx context.Context, uid string) ([]models.Event, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, models.NewValidationError("User ID is required", "uid")
	}
	return s.store.Find(ctx, store.EventFilter{CreatorUID: uid}, store.Page{})
}

// ListEventsJoinedByUser returns every event uid joined, soonest first.
func (s *EventService) ListEventsJoinedByUser(ctx context.Context, uid string) ([]models.Event, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, models.NewValidationError("User ID is required", "uid")
	}
	return s.store.Find(ctx, store.EventFilter{ParticipantUID: uid}, store.Page{})
}

// CountEvents returns the number of stored events, past ones included.
func (s *EventService) CountEvents(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, store.EventFilter{})
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.NewInvalidIDError(id)
	}
	return oid, nil
}

// eventErr gives store-level not-found errors the event-specific code.
func eventErr(err error) error {
	if models.CodeOf(err) == models.ErrCodeNotFound {
		return models.NewEventNotFoundError()
	}
	return err
}

func validateEvent(in EventInput, now time.Time, withCreator bool) (models.EventFields, error) {
	fields := models.EventFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		EventType:   models.EventType(strings.TrimSpace(in.EventType)),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		Location:    strings.TrimSpace(in.Location),
		EventDate:   models.StoredTime(in.EventDate),
	}

	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"title", fields.Title},
		{"description", fields.Description},
		{"eventType", string(fields.EventType)},
		{"thumbnail", fields.Thumbnail},
		{"location", fields.Location},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if in.EventDate.IsZero() {
		missing = append(missing, "eventDate")
	}
	if withCreator {
		if strings.TrimSpace(in.Creator.UID) == "" {
			missing = append(missing, "creator.uid")
		}
		if strings.TrimSpace(in.Creator.Email) == "" {
			missing = append(missing, "creator.email")
		}
		if strings.TrimSpace(in.Creator.DisplayName) == "" {
			missing = append(missing, "creator.displayName")
		}
	}
	if len(missing) > 0 {
		return fields, models.NewValidationError("All fields are required", missing...)
	}

	if !fields.EventType.Valid() {
		return fields, models.NewValidationError("eventType must be one of Cleanup, Plantation, Donation, Education, Healthcare, Other", "eventType")
	}
	if !fields.EventDate.After(now) {
		return fields, models.NewValidationError("Event date must be in the future", "eventDate")
	}
	return fields, nil
}
