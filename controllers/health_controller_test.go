package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/store"
)

func TestHealth_AlwaysOK(t *testing.T) {
	for _, state := range []store.ConnState{store.StateConnected, store.StateDisconnected} {
		d := &Deps{DB: mockReadiness{state: state}, Env: "test", Now: func() time.Time { return testNow }}
		w := doRequest(newRouter(d), http.MethodGet, "/api/health", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%v: status = %d", state, w.Code)
		}
		body := decodeBody(t, w)
		want := "disconnected"
		if state == store.StateConnected {
			want = "connected"
		}
		if body["database"] != want || body["environment"] != "test" || body["timestamp"] != "2026-10-16T12:00:00Z" {
			t.Errorf("%v: body = %v", state, body)
		}
	}
}

func TestDebugStatus(t *testing.T) {
	svc := &mockEventService{
		countFn: func(ctx context.Context) (int64, error) { return 42, nil },
	}

	d := &Deps{Events: svc, DB: mockReadiness{state: store.StateConnected}}
	w := doRequest(newRouter(d), http.MethodGet, "/api/events/debug/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if events, _ := body["events"].(map[string]any); events["total"] != float64(42) {
		t.Errorf("events = %v", body["events"])
	}
	if db, _ := body["database"].(map[string]any); db["status"] != "connected" || db["name"] != "helping-hands-test" {
		t.Errorf("database = %v", body["database"])
	}

	d.DB = mockReadiness{state: store.StateConnecting}
	w = doRequest(newRouter(d), http.MethodGet, "/api/events/debug/status", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if body := decodeBody(t, w); body["code"] != models.ErrCodeDBUnavailable {
		t.Errorf("body = %v", body)
	}
}

func TestNotFound(t *testing.T) {
	w := doRequest(newRouter(&Deps{}), http.MethodDelete, "/api/nothing?x=1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Route not found" || body["path"] != "/api/nothing?x=1" || body["method"] != "DELETE" {
		t.Errorf("body = %v", body)
	}
}
