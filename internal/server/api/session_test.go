package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

func TestSessionHandler_GetState(t *testing.T) {
	m := session.New(session.DefaultConfig(), nil, nil, nil)
	handler := NewSessionHandler(m, nil)

	rec := do(handler, http.MethodGet, "/api/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var state session.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state.ID != m.ID() || state.Target != session.NoTarget || state.Buffer != "empty" {
		t.Errorf("state = %+v", state)
	}
}

func TestSessionHandler_SetTarget(t *testing.T) {
	s := newTestStore(t)
	if err := s.Gestures().Create(&store.Gesture{ID: 7, Name: "water"}); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	tests := []struct {
		name       string
		store      *store.Store
		body       string
		want       int
		wantTarget int
	}{
		{name: "known gesture", store: s, body: `{"gesture_id": 7}`, want: http.StatusOK, wantTarget: 7},
		{name: "unknown gesture", store: s, body: `{"gesture_id": 8}`, want: http.StatusNotFound, wantTarget: session.NoTarget},
		{name: "no catalog", store: nil, body: `{"gesture_id": 8}`, want: http.StatusOK, wantTarget: 8},
		{name: "zero", store: s, body: `{"gesture_id": 0}`, want: http.StatusBadRequest, wantTarget: session.NoTarget},
		{name: "negative", store: nil, body: `{"gesture_id": -1}`, want: http.StatusBadRequest, wantTarget: session.NoTarget},
		{name: "invalid json", store: s, body: `nope`, want: http.StatusBadRequest, wantTarget: session.NoTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := session.New(session.DefaultConfig(), nil, nil, nil)
			handler := NewSessionHandler(m, tt.store)

			rec := do(handler, http.MethodPut, "/api/session/target", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if m.Target() != tt.wantTarget {
				t.Errorf("Target() = %d, want %d", m.Target(), tt.wantTarget)
			}
		})
	}
}

func TestSessionHandler_Reset(t *testing.T) {
	m := session.New(session.DefaultConfig(), nil, nil, nil)
	m.SetTarget(5)
	handler := NewSessionHandler(m, nil)

	rec := do(handler, http.MethodPost, "/api/session/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if m.Target() != session.NoTarget {
		t.Errorf("Target() after reset = %d, want NoTarget", m.Target())
	}
}

func TestSessionHandler_Routing(t *testing.T) {
	handler := NewSessionHandler(session.New(session.DefaultConfig(), nil, nil, nil), nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodPost, path: "/api/session", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/session/target", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/session/reset", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/session/other", want: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/session/", want: http.StatusOK},
	}

	for _, tt := range tests {
		rec := do(handler, tt.method, tt.path, "")
		if rec.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}
