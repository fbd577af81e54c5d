package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phillip/helping-hands-go/controllers"
	"github.com/phillip/helping-hands-go/metrics"
	"github.com/phillip/helping-hands-go/middleware"
	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/services"
	"github.com/phillip/helping-hands-go/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEvents struct{}

func (stubEvents) ListEvents(ctx context.Context, in services.ListEventsInput) (*models.EventPage, error) {
	return &models.EventPage{Events: []models.Event{}, CurrentPage: 1}, nil
}

func (stubEvents) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return nil, models.NewEventNotFoundError()
}

func (stubEvents) CreateEvent(ctx context.Context, in services.EventInput) (*models.Event, error) {
	return &models.Event{Title: in.Title}, nil
}

func (stubEvents) UpdateEvent(ctx context.Context, id string, in services.EventInput) (*models.Event, error) {
	return nil, models.NewEventNotFoundError()
}

func (stubEvents) JoinEvent(ctx context.Context, id string, user models.UserRef) (*models.Event, error) {
	return nil, models.NewEventNotFoundError()
}

func (stubEvents) ListEventsByCreator(ctx context.Context, uid string) ([]models.Event, error) {
	return nil, nil
}

func (stubEvents) ListEventsJoinedByUser(ctx context.Context, uid string) ([]models.Event, error) {
	return nil, nil
}

func (stubEvents) CountEvents(ctx context.Context) (int64, error) { return 0, nil }

type stubUsers struct{}

func (stubUsers) SyncUser(ctx context.Context, in services.SyncUserInput) (*models.User, error) {
	return &models.User{UID: in.UID, Email: in.Email}, nil
}

func (stubUsers) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return nil, models.NewUserNotFoundError()
}

type stubDB struct{}

func (stubDB) IsReady() bool          { return false }
func (stubDB) State() store.ConnState { return store.StateDisconnected }
func (stubDB) DatabaseName() string   { return "helping-hands" }

func newTestEngine(t *testing.T, requireToken bool) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := &controllers.Deps{
		Events: stubEvents{},
		Users:  stubUsers{},
		DB:     stubDB{},
		Env:    "test",
	}
	return NewEngine(deps, Options{
		Origins:        []string{"https://helping-hands-client.vercel.app"},
		RequestTimeout: time.Second,
		MaxBodyBytes:   1 << 20,
		RequireToken:   requireToken,
		Observer:       collector,
		MetricsHandler: metrics.Handler(reg),
	})
}

func serve(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEngine_Routes(t *testing.T) {
	r := newTestEngine(t, false)

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/events", "", http.StatusOK},
		{http.MethodGet, "/api/events/debug/status", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/events/user/u1", "", http.StatusOK},
		{http.MethodGet, "/api/events/5f1d7f1c2a4b3c0012345678", "", http.StatusNotFound},
		{http.MethodPost, "/api/events", `{"title":"x"}`, http.StatusCreated},
		{http.MethodPut, "/api/events/5f1d7f1c2a4b3c0012345678", `{"title":"x"}`, http.StatusNotFound},
		{http.MethodPost, "/api/events/5f1d7f1c2a4b3c0012345678/join", `{"user":{}}`, http.StatusNotFound},
		{http.MethodPost, "/api/auth/sync-user", `{"uid":"u1","email":"e@x.org"}`, http.StatusOK},
		{http.MethodGet, "/api/users/u1", "", http.StatusNotFound},
		{http.MethodGet, "/api/users/u1/joined-events", "", http.StatusOK},
		{http.MethodPost, "/api/uploads/thumbnail", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(r, tt.method, tt.path, tt.body, nil)
		if w.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.status, w.Body.String())
		}
		if w.Header().Get(middleware.RequestIDHeader) == "" {
			t.Errorf("%s %s: missing request id", tt.method, tt.path)
		}
	}
}

func TestEngine_CatchAllBody(t *testing.T) {
	w := serve(newTestEngine(t, false), http.MethodGet, "/nope", "", nil)
	if !strings.Contains(w.Body.String(), `"error":"Route not found"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestEngine_RequireTokenOnWrites(t *testing.T) {
	r := newTestEngine(t, true)

	if w := serve(r, http.MethodPost, "/api/events", `{"title":"x"}`, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("create without token: status = %d, want 401", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/events", "", nil); w.Code != http.StatusOK {
		t.Errorf("reads stay public: status = %d", w.Code)
	}
}

func TestEngine_CORS(t *testing.T) {
	w := serve(newTestEngine(t, false), http.MethodGet, "/api/events", "", map[string]string{
		"Origin": "https://helping-hands-client.vercel.app",
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://helping-hands-client.vercel.app" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestEngine_Metrics(t *testing.T) {
	r := newTestEngine(t, false)
	serve(r, http.MethodGet, "/api/health", "", nil)

	w := serve(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `helpinghands_http_requests_total{method="GET",route="/api/health",status="200"} 1`) {
		t.Errorf("health request not counted:\n%s", body)
	}
}
