// Package session owns the recognition pipeline for one practice session.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ensenando/signcoach/internal/classifier"
	"github.com/ensenando/signcoach/internal/confirm"
	"github.com/ensenando/signcoach/internal/detector"
	"github.com/ensenando/signcoach/internal/feature"
	"github.com/ensenando/signcoach/internal/observable"
	"github.com/ensenando/signcoach/internal/sequence"
)

// NoTarget is the target of a session nobody is practicing in.
const NoTarget = confirm.NoLabel

// ErrClosed is returned by ProcessFrame after Close.
var ErrClosed = errors.New("session closed")

// Config holds session options.
type Config struct {
	Confirm confirm.Config
}

// DefaultConfig returns a Config with the default confirmation rules.
func DefaultConfig() Config {
	return Config{Confirm: confirm.DefaultConfig()}
}

// State is a point-in-time view of a session.
type State struct {
	ID          string                 `json:"id"`
	Target      int                    `json:"target"`
	Progress    int                    `json:"progress"`
	Prediction  *classifier.Prediction `json:"prediction"`
	Frames      int                    `json:"frames"`
	Buffer      string                 `json:"buffer"`
	Consecutive int                    `json:"consecutive"`
	Closed      bool                   `json:"closed"`
}

// Manager runs frames through fusion, buffering, classification and
// confirmation. ProcessFrame, SetTarget, Reset and Close are serialized;
// the manager starts no goroutines of its own.
type Manager struct {
	id      string
	pose    detector.PoseDetector
	hands   detector.HandDetector
	adapter *classifier.Adapter

	mu      sync.Mutex
	buffer  *sequence.Buffer
	machine *confirm.StateMachine
	pending *confirm.Config
	target  int
	closed  bool

	progress   *observable.Value[int]
	prediction *observable.Value[*classifier.Prediction]
	targets    *observable.Value[int]
}

// New creates a Manager. Any of the providers may be nil: a missing
// landmark provider counts as "nothing detected" and a missing classifier
// never predicts.
func New(config Config, pose detector.PoseDetector, hands detector.HandDetector, c classifier.Classifier) *Manager {
	return &Manager{
		id:         uuid.NewString(),
		pose:       pose,
		hands:      hands,
		adapter:    classifier.NewAdapter(c),
		buffer:     sequence.NewBuffer(),
		machine:    confirm.New(config.Confirm),
		target:     NoTarget,
		progress:   observable.New(0),
		prediction: observable.NewFunc[*classifier.Prediction](nil, classifier.Equal),
		targets:    observable.New(NoTarget),
	}
}

// ID returns the session identifier.
func (m *Manager) ID() string {
	return m.id
}

// Progress is the last confirmed progress, 0-100.
func (m *Manager) Progress() *observable.Value[int] {
	return m.progress
}

// Prediction is the last confirmed prediction, nil when there is none.
func (m *Manager) Prediction() *observable.Value[*classifier.Prediction] {
	return m.prediction
}

// Targets publishes the practice target whenever it changes.
func (m *Manager) Targets() *observable.Value[int] {
	return m.targets
}

// Target returns the gesture currently being practiced.
func (m *Manager) Target() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// SetTarget switches the practice target. A new id clears the window and
// resets progress and prediction; the current id is a no-op.
func (m *Manager) SetTarget(gestureID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setTargetLocked(gestureID)
}

// Reset clears the window and confirmation state and drops the target.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// SetConfig replaces the confirmation rules. The running streak is judged by
// the old rules; the new ones take effect at the next target change or Reset.
func (m *Manager) SetConfig(cfg confirm.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &cfg
}

// Config returns the confirmation rules currently in effect.
func (m *Manager) Config() confirm.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Config()
}

func (m *Manager) setTargetLocked(gestureID int) {
	if gestureID == m.target {
		return
	}
	log.Printf("session %s: target %d -> %d", m.id, m.target, gestureID)
	m.clearLocked()
	m.target = gestureID
	m.targets.Set(gestureID)
}

func (m *Manager) resetLocked() {
	m.clearLocked()
	m.target = NoTarget
	m.targets.Set(NoTarget)
}

// clearLocked empties the window and the streak and publishes zero progress.
// The target is left to the caller so it is published once.
func (m *Manager) clearLocked() {
	m.buffer.Clear()
	if m.pending != nil {
		m.machine = confirm.New(*m.pending)
		m.pending = nil
	} else {
		m.machine.Reset()
	}
	m.progress.Set(0)
	m.prediction.Set(nil)
}

// ProcessFrame runs one camera frame through the pipeline. Classification
// only happens once the window is full. Detection errors are treated as
// nothing detected.
func (m *Manager) ProcessFrame(frame *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	f := feature.Fuse(m.detectPose(frame), m.detectHands(frame))
	m.buffer.Push(f)

	if !m.buffer.Full() {
		return nil
	}

	var p *classifier.Prediction
	if result, ok := m.adapter.Classify(m.buffer.Snapshot()); ok {
		p = &result
	}

	r := m.machine.OnPrediction(m.target, p)
	m.progress.Set(r.Progress)
	m.prediction.Set(r.Current)

	return nil
}

func (m *Manager) detectPose(frame *gocv.Mat) []float32 {
	if m.pose == nil {
		return nil
	}
	pose, err := m.pose.Detect(frame)
	if err != nil {
		log.Printf("session %s: pose detection: %v", m.id, err)
		return nil
	}
	return pose
}

func (m *Manager) detectHands(frame *gocv.Mat) []detector.Hand {
	if m.hands == nil {
		return nil
	}
	hands, err := m.hands.Detect(frame)
	if err != nil {
		log.Printf("session %s: hand detection: %v", m.id, err)
		return nil
	}
	return hands
}

// Close releases the landmark providers and the classifier, then resets the
// session. Every resource is released even if an earlier one fails; the
// failures are returned joined. Calling Close again does nothing.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.pose != nil {
		if err := m.pose.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pose detector: %w", err))
		}
	}
	if m.hands != nil {
		if err := m.hands.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close hand detector: %w", err))
		}
	}
	if err := m.adapter.Close(); err != nil {
		errs = append(errs, err)
	}

	for _, err := range errs {
		log.Printf("session %s: %v", m.id, err)
	}

	m.resetLocked()
	return errors.Join(errs...)
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.machine.State()
	return State{
		ID:          m.id,
		Target:      m.target,
		Progress:    m.progress.Get(),
		Prediction:  m.prediction.Get(),
		Frames:      m.buffer.Len(),
		Buffer:      m.buffer.State().String(),
		Consecutive: s.Consecutive,
		Closed:      m.closed,
	}
}
