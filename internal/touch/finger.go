// Package touch reconstructs per-finger state from a raw multitouch
// event stream (evdev type B slot protocol). The Tracker consumes one
// event at a time and surfaces coherent batches of updated and released
// fingers at each synchronization boundary.
package touch

// Axis is one absolute-axis value that may not have been reported yet.
// The kernel only sends axes that changed, so a finger's first batch can
// leave some axes unset.
type Axis struct {
	Value int32
	Valid bool
}

func (a *Axis) set(v int32) {
	a.Value = v
	a.Valid = true
}

// Snapshot is a finger's committed axis state at one sync boundary.
type Snapshot struct {
	Sec         float64
	X           Axis
	Y           Axis
	Pressure    Axis
	Orientation Axis
	TouchMinor  Axis
	TouchMajor  Axis
}

// Finger is one physical contact, identified by the kernel-assigned
// tracking id. The slot binding may move between gestures but the
// tracking id is stable for the finger's lifetime.
type Finger struct {
	ID      int32
	DownSec float64
	UpSec   float64

	X           Axis
	Y           Axis
	Pressure    Axis
	Orientation Axis
	TouchMinor  Axis
	TouchMajor  Axis

	released bool
	trace    []Snapshot
}

// NewFinger creates a finger touching down at the given time.
func NewFinger(id int32, downSec float64) *Finger {
	return &Finger{ID: id, DownSec: downSec}
}

// Snapshot captures the finger's current axis state.
func (f *Finger) Snapshot(sec float64) Snapshot {
	return Snapshot{
		Sec:         sec,
		X:           f.X,
		Y:           f.Y,
		Pressure:    f.Pressure,
		Orientation: f.Orientation,
		TouchMinor:  f.TouchMinor,
		TouchMajor:  f.TouchMajor,
	}
}

// Commit appends the current state to the finger's trace. The trace is
// append-only; the diff recorder reads the previous entry before the
// new one is added.
func (f *Finger) Commit(sec float64) {
	f.trace = append(f.trace, f.Snapshot(sec))
}

// LastCommitted returns the most recent committed snapshot.
func (f *Finger) LastCommitted() (Snapshot, bool) {
	if len(f.trace) == 0 {
		return Snapshot{}, false
	}
	return f.trace[len(f.trace)-1], true
}

// Trace returns the committed snapshot history.
func (f *Finger) Trace() []Snapshot { return f.trace }

// Released reports whether a negative tracking id has been seen for
// this finger in the current batch.
func (f *Finger) Released() bool { return f.released }

// DownDuration returns seconds from touch-down to release. Only valid
// after the release batch committed.
func (f *Finger) DownDuration() float64 {
	return f.UpSec - f.DownSec
}

// apply updates one axis. Returns false for codes that are not
// per-finger axes.
func (f *Finger) apply(code uint16, value int32) bool {
	switch code {
	case codePositionX:
		f.X.set(value)
	case codePositionY:
		f.Y.set(value)
	case codePressure:
		f.Pressure.set(value)
	case codeOrientation:
		f.Orientation.set(value)
	case codeTouchMinor:
		f.TouchMinor.set(value)
	case codeTouchMajor:
		f.TouchMajor.set(value)
	default:
		return false
	}
	return true
}
