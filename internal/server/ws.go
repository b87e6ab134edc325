package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ensenando/signcoach/internal/classifier"
	"github.com/ensenando/signcoach/internal/session"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ProgressMessage is sent to progress subscribers on every change.
type ProgressMessage struct {
	SessionID  string                 `json:"session_id"`
	Target     int                    `json:"target"`
	Progress   int                    `json:"progress"`
	Prediction *classifier.Prediction `json:"prediction"`
	Timestamp  int64                  `json:"timestamp"`
}

// ProgressHandler streams session progress via WebSocket. Each connection
// gets the current state first, then one message per change.
type ProgressHandler struct {
	session *session.Manager
}

// NewProgressHandler creates a ProgressHandler for the given session.
func NewProgressHandler(m *session.Manager) *ProgressHandler {
	return &ProgressHandler{session: m}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	progress, cancelProgress := h.session.Progress().Subscribe()
	defer cancelProgress()
	predictions, cancelPrediction := h.session.Prediction().Subscribe()
	defer cancelPrediction()
	targets, cancelTargets := h.session.Targets().Subscribe()
	defer cancelTargets()

	// Clients only read; the reader exists to notice the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	msg := ProgressMessage{
		SessionID:  h.session.ID(),
		Target:     <-targets,
		Progress:   <-progress,
		Prediction: <-predictions,
	}
	if err := h.write(conn, msg); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case v, ok := <-progress:
			if !ok {
				return
			}
			msg.Progress = v
		case p, ok := <-predictions:
			if !ok {
				return
			}
			msg.Prediction = p
		case t, ok := <-targets:
			if !ok {
				return
			}
			msg.Target = t
		}
		if err := h.write(conn, msg); err != nil {
			return
		}
	}
}

func (h *ProgressHandler) write(conn *websocket.Conn, msg ProgressMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("progress %s: write: %v", h.session.ID(), err)
		return err
	}
	return nil
}
