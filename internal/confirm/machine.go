// Package confirm turns noisy per-window predictions into a stable progress
// value for the gesture being practiced.
package confirm

import (
	"math"

	"github.com/ensenando/signcoach/internal/classifier"
)

// Defaults for the confirmation rules.
const (
	DefaultConfidenceThreshold = 0.8
	DefaultRequiredConsecutive = 5
)

// NoLabel marks "no label": no last match, or no target to match against.
const NoLabel = -1

// Config holds the confirmation thresholds.
type Config struct {
	// ConfidenceThreshold is the minimum confidence for a match (inclusive).
	ConfidenceThreshold float32
	// RequiredConsecutive is the streak length needed before publishing.
	RequiredConsecutive int
}

// DefaultConfig returns a Config with the default thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		RequiredConsecutive: DefaultRequiredConsecutive,
	}
}

// withDefaults replaces out-of-range values with defaults.
func (c Config) withDefaults() Config {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.RequiredConsecutive <= 0 {
		c.RequiredConsecutive = DefaultRequiredConsecutive
	}
	return c
}

// State is a copy of the machine's internal counters.
type State struct {
	Consecutive int
	LastMatched int
	Progress    int
	Current     *classifier.Prediction
}

// Result is what OnPrediction reports back to the session.
type Result struct {
	Progress int
	Current  *classifier.Prediction
	// Published is true when this prediction completed or extended a
	// confirmed streak and updated Progress.
	Published bool
}

// StateMachine tracks consecutive agreement with a target label.
// It is not safe for concurrent use.
type StateMachine struct {
	config      Config
	consecutive int
	lastMatched int
	progress    int
	current     *classifier.Prediction
}

// New creates a StateMachine in its initial state.
func New(config Config) *StateMachine {
	m := &StateMachine{config: config.withDefaults()}
	m.Reset()
	return m
}

// Config returns the effective configuration.
func (m *StateMachine) Config() Config {
	return m.config
}

// OnPrediction feeds one prediction (nil for "no prediction") for target.
//
// A missing prediction, another label or a confidence under the threshold
// breaks the streak and clears the current prediction; progress keeps its
// last confirmed value. Progress only changes once the streak reaches
// RequiredConsecutive, and is derived from confidence, not streak length.
func (m *StateMachine) OnPrediction(target int, p *classifier.Prediction) Result {
	if p == nil || target == NoLabel || p.Label != target || p.Confidence < m.config.ConfidenceThreshold {
		m.consecutive = 0
		m.lastMatched = NoLabel
		m.current = nil
		return Result{Progress: m.progress}
	}

	if m.lastMatched == target {
		m.consecutive++
	} else {
		m.consecutive = 1
		m.lastMatched = target
	}

	if m.consecutive < m.config.RequiredConsecutive {
		return Result{Progress: m.progress, Current: m.current}
	}

	confirmed := *p
	m.current = &confirmed
	m.progress = ProgressOf(p.Confidence)

	return Result{Progress: m.progress, Current: m.current, Published: true}
}

// Reset returns the machine to its initial state.
func (m *StateMachine) Reset() {
	m.consecutive = 0
	m.lastMatched = NoLabel
	m.progress = 0
	m.current = nil
}

// State returns a copy of the current counters.
func (m *StateMachine) State() State {
	s := State{
		Consecutive: m.consecutive,
		LastMatched: m.lastMatched,
		Progress:    m.progress,
	}
	if m.current != nil {
		c := *m.current
		s.Current = &c
	}
	return s
}

// ProgressOf converts a confidence to a 0-100 progress value.
func ProgressOf(confidence float32) int {
	p := int(math.Round(float64(confidence) * 100))
	return min(max(p, 0), 100)
}
