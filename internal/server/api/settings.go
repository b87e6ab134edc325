package api

import (
	"encoding/json"
	"net/http"

	"github.com/ensenando/signcoach/internal/confirm"
	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

// SettingsHandler reads and stores the recognition overrides and hands
// them to the live session, which applies them at its next target change.
type SettingsHandler struct {
	store   *store.Store
	base    confirm.Config
	session *session.Manager
}

// NewSettingsHandler creates a SettingsHandler; base supplies values that
// have no stored override. m may be nil.
func NewSettingsHandler(s *store.Store, base confirm.Config, m *session.Manager) *SettingsHandler {
	return &SettingsHandler{store: s, base: base, session: m}
}

type recognitionSettings struct {
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	RequiredConsecutive int     `json:"required_consecutive"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter) {
	cfg, err := h.store.Settings().Recognition(h.base)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, recognitionSettings(cfg))
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var req recognitionSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConfidenceThreshold <= 0 || req.ConfidenceThreshold > 1 {
		writeError(w, http.StatusBadRequest, "confidence_threshold must be in (0, 1]")
		return
	}
	if req.RequiredConsecutive <= 0 {
		writeError(w, http.StatusBadRequest, "required_consecutive must be positive")
		return
	}

	cfg := confirm.Config(req)
	if err := h.store.Settings().SetRecognition(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if h.session != nil {
		h.session.SetConfig(cfg)
	}
	writeJSON(w, http.StatusOK, req)
}
