package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockHandDetector is a test implementation of the HandDetector interface.
// It allows tests to control the detection results.
type MockHandDetector struct {
	mu       sync.Mutex
	hands    []Hand
	err      error
	closeErr error
	calls    int
	closed   int
}

// NewMockHandDetector creates a new MockHandDetector instance.
func NewMockHandDetector() *MockHandDetector {
	return &MockHandDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockHandDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockHandDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetCloseError sets the error that will be returned by Close.
func (m *MockHandDetector) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Detect returns the pre-configured hands or error.
func (m *MockHandDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close records the call and returns the configured close error.
func (m *MockHandDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return m.closeErr
}

// Calls returns how many times Detect was invoked.
func (m *MockHandDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed returns how many times Close was invoked.
func (m *MockHandDetector) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockPoseDetector is a test implementation of the PoseDetector interface.
type MockPoseDetector struct {
	mu       sync.Mutex
	pose     []float32
	err      error
	closeErr error
	closed   int
}

// NewMockPoseDetector creates a MockPoseDetector that reports no pose.
func NewMockPoseDetector() *MockPoseDetector {
	return &MockPoseDetector{}
}

// SetPose sets the vector returned by Detect. nil means "no pose".
func (m *MockPoseDetector) SetPose(pose []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
}

// SetError sets the error that will be returned by Detect.
func (m *MockPoseDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetCloseError sets the error that will be returned by Close.
func (m *MockPoseDetector) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Detect returns the configured pose, or a zero vector when none is set.
func (m *MockPoseDetector) Detect(frame *gocv.Mat) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.pose == nil {
		return make([]float32, PoseVectorSize), nil
	}
	return m.pose, nil
}

// Close records the call and returns the configured close error.
func (m *MockPoseDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return m.closeErr
}

// Closed returns how many times Close was invoked.
func (m *MockPoseDetector) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SyntheticPose returns a deterministic pose vector where every value is
// offset + its index / 1000, so tests can check where values end up.
func SyntheticPose(offset float32) []float32 {
	pose := make([]float32, PoseVectorSize)
	for i := range pose {
		pose[i] = offset + float32(i)/1000
	}
	return pose
}

// SyntheticHand returns a hand whose landmark values are offset + index / 1000.
func SyntheticHand(side Side, offset float32) Hand {
	landmarks := make([]float32, HandVectorSize)
	for i := range landmarks {
		landmarks[i] = offset + float32(i)/1000
	}
	return Hand{Landmarks: landmarks, Side: side, Score: 0.95}
}

// OpenPalmLandmarks returns a right hand with all fingers extended.
func OpenPalmLandmarks() Hand {
	var points [NumLandmarks]Point3D

	points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return Hand{
		Landmarks: Flatten(points[:]),
		Side:      SideRight,
		Score:     0.95,
	}
}
