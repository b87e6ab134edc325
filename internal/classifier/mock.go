package classifier

import (
	"sync"

	"github.com/ensenando/signcoach/internal/sequence"
)

// MockClassifier is a test implementation of the Classifier interface.
type MockClassifier struct {
	mu         sync.Mutex
	prediction Prediction
	err        error
	closeErr   error
	calls      int
	closed     int
	last       *sequence.Window
}

// NewMockClassifier creates a MockClassifier that always returns p.
func NewMockClassifier(p Prediction) *MockClassifier {
	return &MockClassifier{prediction: p}
}

// SetPrediction changes the returned prediction.
func (m *MockClassifier) SetPrediction(p Prediction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prediction = p
}

// SetError makes Run fail with err. nil restores normal results.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetCloseError sets the error that will be returned by Close.
func (m *MockClassifier) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Run records the window and returns the configured result.
func (m *MockClassifier) Run(w *sequence.Window) (Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = w
	if m.err != nil {
		return Prediction{}, m.err
	}
	return m.prediction, nil
}

// Close records the call and returns the configured close error.
func (m *MockClassifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return m.closeErr
}

// Calls returns how many times Run was invoked.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed returns how many times Close was invoked.
func (m *MockClassifier) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// LastWindow returns the window passed to the most recent Run.
func (m *MockClassifier) LastWindow() *sequence.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
