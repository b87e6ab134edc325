package detector

import "gocv.io/x/gocv"

// HandDetector defines the interface for hand landmark providers.
type HandDetector interface {
	// Detect analyzes a video frame and returns up to two tagged hands.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// PoseDetector defines the interface for body landmark providers.
type PoseDetector interface {
	// Detect returns a PoseVectorSize-long vector, all zeros when no
	// pose is found in the frame.
	Detect(frame *gocv.Mat) ([]float32, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
