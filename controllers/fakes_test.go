package controllers

import (
	"context"
	"io"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/services"
	"github.com/phillip/helping-hands-go/store"
)

type mockEventService struct {
	listFn      func(ctx context.Context, in services.ListEventsInput) (*models.EventPage, error)
	getFn       func(ctx context.Context, id string) (*models.Event, error)
	createFn    func(ctx context.Context, in services.EventInput) (*models.Event, error)
	updateFn    func(ctx context.Context, id string, in services.EventInput) (*models.Event, error)
	joinFn      func(ctx context.Context, id string, user models.UserRef) (*models.Event, error)
	byCreatorFn func(ctx context.Context, uid string) ([]models.Event, error)
	joinedFn    func(ctx context.Context, uid string) ([]models.Event, error)
	countFn     func(ctx context.Context) (int64, error)
}

func (m *mockEventService) ListEvents(ctx context.Context, in services.ListEventsInput) (*models.EventPage, error) {
	return m.listFn(ctx, in)
}

func (m *mockEventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return m.getFn(ctx, id)
}

func (m *mockEventService) CreateEvent(ctx context.Context, in services.EventInput) (*models.Event, error) {
	return m.createFn(ctx, in)
}

func (m *mockEventService) UpdateEvent(ctx context.Context, id string, in services.EventInput) (*models.Event, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockEventService) JoinEvent(ctx context.Context, id string, user models.UserRef) (*models.Event, error) {
	return m.joinFn(ctx, id, user)
}

func (m *mockEventService) ListEventsByCreator(ctx context.Context, uid string) ([]models.Event, error) {
	return m.byCreatorFn(ctx, uid)
}

func (m *mockEventService) ListEventsJoinedByUser(ctx context.Context, uid string) ([]models.Event, error) {
	return m.joinedFn(ctx, uid)
}

func (m *mockEventService) CountEvents(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

type mockUserService struct {
	syncFn func(ctx context.Context, in services.SyncUserInput) (*models.User, error)
	getFn  func(ctx context.Context, uid string) (*models.User, error)
}

func (m *mockUserService) SyncUser(ctx context.Context, in services.SyncUserInput) (*models.User, error) {
	return m.syncFn(ctx, in)
}

func (m *mockUserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return m.getFn(ctx, uid)
}

type mockReadiness struct {
	state store.ConnState
}

func (m mockReadiness) IsReady() bool          { return m.state == store.StateConnected }
func (m mockReadiness) State() store.ConnState { return m.state }
func (m mockReadiness) DatabaseName() string   { return "helping-hands-test" }

type mockUploader struct {
	uploadFn func(ctx context.Context, file io.Reader, filename string) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	return m.uploadFn(ctx, file, filename)
}
