// Package detector provides pose and hand landmark detection for gesture recognition.
package detector

import "strings"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Pose landmark indices used by the upper-body feature layout.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose              = 0
	LeftShoulder      = 11
	RightShoulder     = 12
	LeftElbow         = 13
	RightElbow        = 14
	LeftWrist         = 15
	RightWrist        = 16
	NumPoseLandmarks  = 33
	CoordsPerLandmark = 3
)

// Vector lengths produced by the providers.
const (
	// HandVectorSize is 21 landmarks × (x, y, z).
	HandVectorSize = NumLandmarks * CoordsPerLandmark
	// PoseVectorSize is 33 landmarks × (x, y, z).
	PoseVectorSize = NumPoseLandmarks * CoordsPerLandmark
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Side tags which hand a landmark set belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide converts a MediaPipe handedness label ("Left"/"Right") to a Side.
// Unknown labels return an empty Side.
func ParseSide(handedness string) Side {
	switch strings.ToLower(strings.TrimSpace(handedness)) {
	case "left":
		return SideLeft
	case "right":
		return SideRight
	}
	return ""
}

// Hand is one detected hand: 63 landmark values (x0, y0, z0, ..., x20, y20, z20)
// tagged with its side.
type Hand struct {
	Landmarks []float32 `json:"landmarks"`
	Side      Side      `json:"side"`
	Score     float64   `json:"score"`
}

// Flatten lays points out as consecutive x, y, z values.
func Flatten(points []Point3D) []float32 {
	out := make([]float32, 0, len(points)*CoordsPerLandmark)
	for _, p := range points {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}
