package touch

import (
	"log/slog"

	"tapd/internal/evdev"
)

// Local aliases so finger.go does not name the transport package in its
// axis switch.
const (
	codePositionX   = evdev.AbsMtPositionX
	codePositionY   = evdev.AbsMtPositionY
	codePressure    = evdev.AbsMtPressure
	codeOrientation = evdev.AbsMtOrientation
	codeTouchMinor  = evdev.AbsMtTouchMinor
	codeTouchMajor  = evdev.AbsMtTouchMajor
)

// Batch is the set of fingers touched since the previous sync boundary.
// Released fingers carry their final axis values and up-timestamp; they
// have already left the slot table.
type Batch struct {
	Sec      float64
	Updated  map[int]*Finger
	Released map[int]*Finger
}

// CommitUpdated appends a trace snapshot for every updated finger.
// The diff recorder does this itself, after diffing; the live loop
// calls it directly.
func (b *Batch) CommitUpdated() {
	for _, f := range b.Updated {
		f.Commit(b.Sec)
	}
}

// Tracker decodes the slot protocol into per-finger state. One Tracker
// per device stream; state is owned, not global.
type Tracker struct {
	log *slog.Logger

	fingers map[int]*Finger
	slot    int // current slot, 0 until the stream selects another
	cur     *Finger

	updated  map[int]*Finger
	released map[int]*Finger
}

// NewTracker creates a tracker with slot 0 selected, as the protocol
// implies at stream start.
func NewTracker(log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		log:      log,
		fingers:  make(map[int]*Finger),
		updated:  make(map[int]*Finger),
		released: make(map[int]*Finger),
	}
}

// Update consumes one event. It returns a non-nil Batch only at a sync
// boundary where at least one finger was updated or released; this is
// the only point downstream consumers observe state.
//
// Protocol anomalies (axis updates with no bound finger, non-axis event
// types, releases of empty slots) are logged and skipped; the stream is
// treated as self-healing at the next sync or slot select.
func (t *Tracker) Update(ev evdev.Event) *Batch {
	if ev.Sync() {
		return t.commit(ev.Seconds())
	}

	if ev.Type != evdev.EvAbs {
		t.log.Debug("unhandled event type",
			"type", ev.Type, "code", ev.Code, "value", ev.Value)
		return nil
	}

	switch ev.Code {
	case evdev.AbsMtSlot:
		t.slot = int(ev.Value)
		t.cur = t.fingers[t.slot]
		if t.cur != nil && !t.cur.released {
			t.updated[t.slot] = t.cur
		}

	case evdev.AbsMtTrackingID:
		if ev.Value >= 0 {
			f := NewFinger(ev.Value, ev.Seconds())
			t.fingers[t.slot] = f
			t.cur = f
			t.updated[t.slot] = f
			return nil
		}
		if t.cur == nil {
			t.log.Debug("release for empty slot", "slot", t.slot)
			return nil
		}
		// Mark released; the finger leaves the slot table at commit so
		// consumers still see its final axis values.
		t.cur.released = true
		t.released[t.slot] = t.cur
		delete(t.updated, t.slot)

	default:
		if t.cur == nil || t.cur.released {
			t.log.Debug("axis update without bound finger",
				"slot", t.slot, "code", ev.Code, "value", ev.Value)
			return nil
		}
		if t.cur.apply(ev.Code, ev.Value) {
			t.updated[t.slot] = t.cur
		} else {
			t.log.Debug("unhandled axis code",
				"slot", t.slot, "code", ev.Code, "value", ev.Value)
		}
	}
	return nil
}

// commit closes the current batch.
func (t *Tracker) commit(sec float64) *Batch {
	if len(t.updated) == 0 && len(t.released) == 0 {
		return nil
	}

	for slot, f := range t.released {
		f.UpSec = sec
		delete(t.fingers, slot)
		if t.cur == f {
			t.cur = nil
		}
	}

	b := &Batch{Sec: sec, Updated: t.updated, Released: t.released}
	t.updated = make(map[int]*Finger)
	t.released = make(map[int]*Finger)
	return b
}

// Active returns the number of fingers currently down.
func (t *Tracker) Active() int { return len(t.fingers) }
