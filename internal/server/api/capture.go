package api

import (
	"encoding/json"
	"net/http"
)

// CaptureControl pauses and resumes frame processing.
type CaptureControl interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// CaptureHandler serves GET and PUT /api/capture.
type CaptureHandler struct {
	control CaptureControl
}

// NewCaptureHandler creates a CaptureHandler for control.
func NewCaptureHandler(control CaptureControl) *CaptureHandler {
	return &CaptureHandler{control: control}
}

type captureState struct {
	Enabled bool `json:"enabled"`
}

func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req captureState
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		h.control.SetEnabled(req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, captureState{Enabled: h.control.IsEnabled()})
}
