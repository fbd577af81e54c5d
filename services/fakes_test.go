package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/store"
)

// --- fakes ---

// fakeEventStore mimics the Mongo repository in memory, including the
// single-document atomicity of AddParticipant.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]models.Event
	err    error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[primitive.ObjectID]models.Event{}}
}

// cloneEvent copies e through BSON, so reads see what MongoDB would return:
// UTC dates with millisecond precision.
func cloneEvent(e models.Event) models.Event {
	raw, err := bson.Marshal(e)
	if err != nil {
		panic(err)
	}
	var out models.Event
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	if out.Participants == nil {
		out.Participants = []models.Participant{}
	}
	return out
}

func (f *fakeEventStore) put(e models.Event) models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Participants == nil {
		e.Participants = []models.Participant{}
	}
	f.events[e.ID] = cloneEvent(e)
	return e
}

func (f *fakeEventStore) Insert(ctx context.Context, e *models.Event) error {
	if f.err != nil {
		return f.err
	}
	*e = f.put(*e)
	return nil
}

func (f *fakeEventStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, &models.Error{Kind: models.KindNotFound, Code: models.ErrCodeNotFound, Message: "Resource not found"}
	}
	e = cloneEvent(e)
	return &e, nil
}

func matches(f store.EventFilter, e models.Event) bool {
	if !f.From.IsZero() && e.EventDate.Before(f.From) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Description), q) {
			return false
		}
	}
	if f.CreatorUID != "" && e.Creator.UID != f.CreatorUID {
		return false
	}
	if f.ParticipantUID != "" && !e.HasParticipant(f.ParticipantUID) {
		return false
	}
	return true
}

func (f *fakeEventStore) Find(ctx context.Context, filter store.EventFilter, page store.Page) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Event{}
	for _, e := range f.events {
		if matches(filter, e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})

	if page.Skip >= int64(len(out)) {
		return []models.Event{}, nil
	}
	out = out[page.Skip:]
	if page.Limit > 0 && page.Limit < int64(len(out)) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (f *fakeEventStore) Count(ctx context.Context, filter store.EventFilter) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.events {
		if matches(filter, e) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields models.EventFields, now time.Time) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, &models.Error{Kind: models.KindNotFound, Code: models.ErrCodeNotFound, Message: "Resource not found"}
	}
	e.Title = fields.Title
	e.Description = fields.Description
	e.EventType = fields.EventType
	e.Thumbnail = fields.Thumbnail
	e.Location = fields.Location
	e.EventDate = fields.EventDate
	e.UpdatedAt = now
	f.events[id] = e
	e = cloneEvent(e)
	return &e, nil
}

func (f *fakeEventStore) AddParticipant(ctx context.Context, id primitive.ObjectID, p models.Participant) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, models.NewEventNotFoundError()
	}
	if e.HasParticipant(p.UID) {
		return nil, models.NewAlreadyJoinedError()
	}
	e.Participants = append(e.Participants, p)
	e.UpdatedAt = p.JoinedAt
	f.events[id] = e
	e = cloneEvent(e)
	return &e, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (f *fakeUserStore) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, &models.Error{Kind: models.KindNotFound, Code: models.ErrCodeNotFound, Message: "Resource not found"}
	}
	return &u, nil
}

func (f *fakeUserStore) Upsert(ctx context.Context, in store.UserUpsert) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[in.UID]
	if !ok {
		u = models.User{
			ID:          primitive.NewObjectID(),
			UID:         in.UID,
			Email:       in.Email,
			DisplayName: in.DefaultDisplayName,
			CreatedAt:   in.Now,
		}
	}
	if in.DisplayName != "" {
		u.DisplayName = in.DisplayName
	}
	if in.PhotoURL != "" {
		u.PhotoURL = in.PhotoURL
	}
	f.users[in.UID] = u
	return &u, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	created  int
	joined   int
	rejected map[string]int
	synced   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{rejected: map[string]int{}}
}

func (r *fakeRecorder) EventCreated(models.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *fakeRecorder) EventJoined() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined++
}

func (r *fakeRecorder) JoinRejected(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[code]++
}

func (r *fakeRecorder) UserSynced() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced++
}

type notification struct {
	eventID primitive.ObjectID
	uid     string
}

type chanNotifier struct {
	ch chan notification
}

func (n *chanNotifier) NotifyJoined(ctx context.Context, e *models.Event, p models.Participant) error {
	n.ch <- notification{eventID: e.ID, uid: p.UID}
	return nil
}
