package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

// SessionHandler exposes the practice session: its state, the target and a
// reset.
type SessionHandler struct {
	session *session.Manager
	store   *store.Store
}

// NewSessionHandler creates a SessionHandler. When s is nil any positive
// target is accepted.
func NewSessionHandler(m *session.Manager, s *store.Store) *SessionHandler {
	return &SessionHandler{session: m, store: s}
}

type setTargetRequest struct {
	GestureID int `json:"gesture_id"`
}

// ServeHTTP routes /api/session, /api/session/target and /api/session/reset.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/session":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.session.Snapshot())
	case "/api/session/target":
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.setTarget(w, r)
	case "/api/session/reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.session.Reset()
		writeJSON(w, http.StatusOK, h.session.Snapshot())
	default:
		http.NotFound(w, r)
	}
}

// setTarget handles PUT /api/session/target.
func (h *SessionHandler) setTarget(w http.ResponseWriter, r *http.Request) {
	var req setTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.GestureID <= 0 {
		writeError(w, http.StatusBadRequest, "gesture_id must be positive")
		return
	}

	if h.store != nil {
		if _, err := h.store.Gestures().GetByID(req.GestureID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Gesture not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to look up gesture")
			return
		}
	}

	h.session.SetTarget(req.GestureID)
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}
