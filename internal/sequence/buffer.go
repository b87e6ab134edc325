// Package sequence keeps the temporal window of fused frames fed to the
// sequence classifier.
package sequence

import "github.com/ensenando/signcoach/internal/feature"

// Capacity is the number of frames in a classifier window.
const Capacity = 83

// Window is the fixed Capacity × feature.Size matrix presented to the
// classifier, oldest frame first.
type Window [Capacity]feature.Frame

// State describes how full a Buffer is.
type State int

const (
	Empty State = iota
	Filling
	Full
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Filling:
		return "filling"
	case Full:
		return "full"
	}
	return "unknown"
}

// Buffer is a fixed-capacity FIFO of frames. It is not safe for concurrent
// use; the owner serializes access.
type Buffer struct {
	frames []feature.Frame
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{frames: make([]feature.Frame, 0, Capacity)}
}

// Push appends a frame, evicting the oldest one when the buffer is full.
func (b *Buffer) Push(f feature.Frame) {
	if len(b.frames) >= Capacity {
		// Shift buffer left by 1, removing oldest frame
		copy(b.frames, b.frames[1:])
		b.frames = b.frames[:Capacity-1]
	}
	b.frames = append(b.frames, f)
}

// Snapshot returns the current window. Until Capacity frames have been
// pushed the leading rows are zero frames and the buffered frames occupy the
// trailing rows in arrival order.
func (b *Buffer) Snapshot() *Window {
	w := new(Window)
	copy(w[Capacity-len(b.frames):], b.frames)
	return w
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.frames = b.frames[:0]
}

// Len returns the number of buffered frames.
func (b *Buffer) Len() int {
	return len(b.frames)
}

// Full reports whether the buffer holds Capacity frames.
func (b *Buffer) Full() bool {
	return len(b.frames) == Capacity
}

// State returns the buffer's fill state.
func (b *Buffer) State() State {
	switch len(b.frames) {
	case 0:
		return Empty
	case Capacity:
		return Full
	}
	return Filling
}
