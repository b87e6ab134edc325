// Package plugin runs external progress reporters. A reporter is an
// executable next to a plugin.json manifest; it receives one JSON event on
// stdin and answers with one JSON response on stdout.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/ensenando/signcoach/internal/classifier"
)

// Events a plugin can subscribe to in its manifest.
const (
	// EventProgress fires whenever the confirmed progress changes.
	EventProgress = "progress"
	// EventConfirmed fires when a gesture becomes confirmed.
	EventConfirmed = "confirmed"
	// EventTarget fires when the practice target changes.
	EventTarget = "target"
)

// ManifestFile is the manifest name inside a plugin directory.
const ManifestFile = "plugin.json"

// ErrInvalidManifest is returned by Manifest.Validate.
var ErrInvalidManifest = errors.New("invalid manifest")

var knownEvents = []string{EventProgress, EventConfirmed, EventTarget}

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Validate requires a name, an executable inside the plugin directory and
// at least one event, all of them known.
func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if m.Executable == "" || !filepath.IsLocal(m.Executable) {
		return fmt.Errorf("%w: executable %q must be a path inside the plugin directory", ErrInvalidManifest, m.Executable)
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("%w: no events", ErrInvalidManifest)
	}
	for _, e := range m.Events {
		if !slices.Contains(knownEvents, e) {
			return fmt.Errorf("%w: unknown event %q", ErrInvalidManifest, e)
		}
	}
	return nil
}

// Request is the event sent to a plugin.
type Request struct {
	Event      string                 `json:"event"`
	SessionID  string                 `json:"session_id"`
	Target     int                    `json:"target"`
	Gesture    string                 `json:"gesture,omitempty"`
	Progress   int                    `json:"progress"`
	Prediction *classifier.Prediction `json:"prediction"`
	Timestamp  time.Time              `json:"timestamp"`
	Config     json.RawMessage        `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribed to event.
func (p *Plugin) Handles(event string) bool {
	return slices.Contains(p.Manifest.Events, event)
}
