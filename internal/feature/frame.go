// Package feature fuses per-frame pose and hand landmarks into the fixed
// feature vector the sequence classifier was trained on.
package feature

import (
	"fmt"

	"github.com/ensenando/signcoach/internal/detector"
)

// Feature layout. The order pose → right hand → left hand must not change:
// the classifier expects exactly this layout.
const (
	PoseSize      = 21 // 7 upper-body keypoints × 3
	HandSize      = detector.HandVectorSize
	Size          = PoseSize + 2*HandSize
	rightHandFrom = PoseSize
	leftHandFrom  = PoseSize + HandSize
)

// UpperBodyIndices are the pose keypoints kept in a Frame:
// nose, shoulders, elbows, wrists.
var UpperBodyIndices = [...]int{
	detector.Nose,
	detector.LeftShoulder,
	detector.RightShoulder,
	detector.LeftElbow,
	detector.RightElbow,
	detector.LeftWrist,
	detector.RightWrist,
}

// Frame is one timestep of fused features.
type Frame [Size]float32

// Pose returns the 21 upper-body values.
func (f *Frame) Pose() []float32 {
	return f[:rightHandFrom]
}

// RightHand returns the 63 right-hand values.
func (f *Frame) RightHand() []float32 {
	return f[rightHandFrom:leftHandFrom]
}

// LeftHand returns the 63 left-hand values.
func (f *Frame) LeftHand() []float32 {
	return f[leftHandFrom:]
}

// IsZero reports whether every value in the frame is zero.
func (f *Frame) IsZero() bool {
	return *f == (Frame{})
}

// Fuse builds a Frame from a full pose vector and the detected hands.
//
// A nil pose is treated as "no body detected". The first hand tagged right
// and the first tagged left are used; a missing side is zero filled.
// A hand with no landmarks counts as absent; any other length than 63 is a
// programming error and panics.
func Fuse(pose []float32, hands []detector.Hand) Frame {
	var f Frame

	if pose != nil {
		if len(pose) != detector.PoseVectorSize {
			panic(fmt.Sprintf("feature: pose vector has %d values, want %d", len(pose), detector.PoseVectorSize))
		}
		for i, idx := range UpperBodyIndices {
			src := idx * detector.CoordsPerLandmark
			copy(f[i*detector.CoordsPerLandmark:], pose[src:src+detector.CoordsPerLandmark])
		}
	}

	var right, left []float32
	var haveRight, haveLeft bool
	for _, h := range hands {
		switch {
		case h.Side == detector.SideRight && !haveRight:
			right, haveRight = checkHand(h), true
		case h.Side == detector.SideLeft && !haveLeft:
			left, haveLeft = checkHand(h), true
		}
	}

	copy(f[rightHandFrom:leftHandFrom], right)
	copy(f[leftHandFrom:], left)

	return f
}

func checkHand(h detector.Hand) []float32 {
	if h.Landmarks != nil && len(h.Landmarks) != HandSize {
		panic(fmt.Sprintf("feature: %s hand has %d values, want %d", h.Side, len(h.Landmarks), HandSize))
	}
	return h.Landmarks
}
