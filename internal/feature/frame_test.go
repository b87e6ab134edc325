package feature

import (
	"strings"
	"testing"

	"github.com/ensenando/signcoach/internal/detector"
)

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, contains) {
			t.Errorf("panic = %v, want message containing %q", r, contains)
		}
	}()
	fn()
}

func TestFuse_Layout(t *testing.T) {
	pose := detector.SyntheticPose(0)
	right := detector.SyntheticHand(detector.SideRight, 10)
	left := detector.SyntheticHand(detector.SideLeft, 20)

	f := Fuse(pose, []detector.Hand{left, right})

	if len(f) != 147 {
		t.Fatalf("len(frame) = %d, want 147", len(f))
	}

	t.Run("upper body keypoints in order", func(t *testing.T) {
		for i, idx := range UpperBodyIndices {
			for c := 0; c < 3; c++ {
				want := pose[idx*3+c]
				if got := f[i*3+c]; got != want {
					t.Errorf("pose[%d].%d = %f, want %f", idx, c, got, want)
				}
			}
		}
	})

	t.Run("right hand follows pose", func(t *testing.T) {
		got := f.RightHand()
		for i := range got {
			if got[i] != right.Landmarks[i] {
				t.Fatalf("right[%d] = %f, want %f", i, got[i], right.Landmarks[i])
			}
		}
	})

	t.Run("left hand is last", func(t *testing.T) {
		got := f.LeftHand()
		for i := range got {
			if got[i] != left.Landmarks[i] {
				t.Fatalf("left[%d] = %f, want %f", i, got[i], left.Landmarks[i])
			}
		}
	})
}

func TestFuse_MissingModalities(t *testing.T) {
	tests := []struct {
		name      string
		pose      []float32
		hands     []detector.Hand
		wantPose  bool
		wantRight bool
		wantLeft  bool
	}{
		{
			name:     "no right hand",
			pose:     detector.SyntheticPose(1),
			hands:    []detector.Hand{detector.SyntheticHand(detector.SideLeft, 2)},
			wantPose: true, wantLeft: true,
		},
		{
			name:      "no left hand",
			pose:      detector.SyntheticPose(1),
			hands:     []detector.Hand{detector.SyntheticHand(detector.SideRight, 2)},
			wantPose:  true,
			wantRight: true,
		},
		{
			name:      "no pose",
			pose:      nil,
			hands:     []detector.Hand{detector.SyntheticHand(detector.SideRight, 2), detector.SyntheticHand(detector.SideLeft, 3)},
			wantRight: true,
			wantLeft:  true,
		},
		{
			name: "nothing detected",
		},
		{
			name:     "untagged hand is ignored",
			pose:     detector.SyntheticPose(1),
			hands:    []detector.Hand{{Landmarks: make([]float32, 63)}},
			wantPose: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Fuse(tt.pose, tt.hands)

			if len(f) != Size {
				t.Fatalf("len(frame) = %d, want %d", len(f), Size)
			}
			if got := !allZero(f.Pose()); got != tt.wantPose {
				t.Errorf("pose populated = %v, want %v", got, tt.wantPose)
			}
			if got := !allZero(f.RightHand()); got != tt.wantRight {
				t.Errorf("right hand populated = %v, want %v", got, tt.wantRight)
			}
			if got := !allZero(f.LeftHand()); got != tt.wantLeft {
				t.Errorf("left hand populated = %v, want %v", got, tt.wantLeft)
			}
		})
	}
}

func TestFuse_FirstHandPerSideWins(t *testing.T) {
	first := detector.SyntheticHand(detector.SideRight, 1)
	second := detector.SyntheticHand(detector.SideRight, 5)

	f := Fuse(nil, []detector.Hand{first, second})

	if got := f.RightHand()[0]; got != 1 {
		t.Errorf("right[0] = %f, want 1 (first right hand)", got)
	}
	if !allZero(f.LeftHand()) {
		t.Error("left hand should be zero when only right hands are detected")
	}
}

func TestFuse_ContractViolations(t *testing.T) {
	t.Run("short pose", func(t *testing.T) {
		expectPanic(t, "pose vector", func() {
			Fuse(make([]float32, 98), nil)
		})
	})

	t.Run("long hand", func(t *testing.T) {
		expectPanic(t, "right hand", func() {
			Fuse(nil, []detector.Hand{{Landmarks: make([]float32, 64), Side: detector.SideRight}})
		})
	})
}

func TestFrame_IsZero(t *testing.T) {
	var f Frame
	if !f.IsZero() {
		t.Error("zero frame should report IsZero")
	}
	f[Size-1] = 0.5
	if f.IsZero() {
		t.Error("frame with a value should not report IsZero")
	}
}

func allZero(values []float32) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
