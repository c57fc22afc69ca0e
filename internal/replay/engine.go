// Package replay turns an abstract gesture description, a recorded
// trace or a parametric path set, back into correctly paced raw
// protocol events injected on the event channel.
package replay

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"tapd/internal/evdev"
	"tapd/internal/trace"
)

// Options tunes an Engine.
type Options struct {
	// Clock defaults to the system clock.
	Clock Clock
	// NoSleep skips pacing delays entirely (deterministic tests).
	NoSleep bool
	// DryRun executes pacing but suppresses all device writes, for
	// timing validation without side effects.
	DryRun bool
	Log    *slog.Logger
}

// Engine replays traces onto an event writer, reproducing the relative
// timing of the source and multiplexing concurrent touches onto the
// slot protocol.
type Engine struct {
	w     evdev.Writer
	clock Clock
	log   *slog.Logger

	noSleep bool
	dryRun  bool

	// slot is the device's currently selected slot. The protocol keeps
	// the selection across sync boundaries, so a batch touching only
	// the selected slot needs no select event. Slot 0 is implicit at
	// stream start.
	slot int
}

// NewEngine creates an Engine writing to w.
func NewEngine(w evdev.Writer, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Engine{
		w:       w,
		clock:   opts.Clock,
		log:     opts.Log,
		noSleep: opts.NoSleep,
		dryRun:  opts.DryRun,
	}
}

// Replay drains one source. Relative gaps between records match the
// source's logical timestamps: for a record at logical time L the
// engine sleeps until wall time T0 + (L - L0) before emitting.
//
// An invalid record kind aborts the replay; anything already injected
// stays injected, the channel has no transactions.
//
// The slot selection starts at 0 on every call: the kernel's selected
// slot cannot be assumed to survive between replays, so the first
// record targeting a nonzero slot always gets an explicit select.
func (e *Engine) Replay(src trace.Source) error {
	e.slot = 0
	t0 := e.clock.Now()
	l0 := 0.0
	started := false

	for {
		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("replay source: %w", err)
		}

		if !started {
			l0 = rec.Sec
			started = true
		}

		elapsed := e.clock.Now().Sub(t0).Seconds()
		if delay := (rec.Sec - l0) - elapsed; delay > 0 && !e.noSleep {
			e.clock.Sleep(time.Duration(delay * float64(time.Second)))
		}

		switch rec.Kind {
		case trace.Update:
			err = e.writeUpdate(rec)
		case trace.Release:
			err = e.writeRelease(rec)
		default:
			return fmt.Errorf("invalid record kind %q", string(rec.Kind))
		}
		if err != nil {
			return err
		}
	}
}

// writeUpdate emits one batch of per-slot diffs. The already-selected
// slot goes first without a redundant select; every other slot gets a
// select event before its axes; one sync closes the batch.
func (e *Engine) writeUpdate(rec trace.Record) error {
	if d, ok := rec.Slots[e.slot]; ok {
		if err := e.writeDiff(rec.Sec, d); err != nil {
			return err
		}
	}
	for _, slot := range trace.SortedSlots(rec) {
		if slot == e.slot {
			continue
		}
		if err := e.selectSlot(rec.Sec, slot); err != nil {
			return err
		}
		if err := e.writeDiff(rec.Sec, rec.Slots[slot]); err != nil {
			return err
		}
	}
	return e.sync(rec.Sec)
}

// writeRelease emits tracking-id -1 for each listed slot, same select
// discipline, then sync.
func (e *Engine) writeRelease(rec trace.Record) error {
	if _, ok := rec.Slots[e.slot]; ok {
		if err := e.write(rec.Sec, evdev.EvAbs, evdev.AbsMtTrackingID, -1); err != nil {
			return err
		}
	}
	for _, slot := range trace.SortedSlots(rec) {
		if slot == e.slot {
			continue
		}
		if err := e.selectSlot(rec.Sec, slot); err != nil {
			return err
		}
		if err := e.write(rec.Sec, evdev.EvAbs, evdev.AbsMtTrackingID, -1); err != nil {
			return err
		}
	}
	return e.sync(rec.Sec)
}

func (e *Engine) selectSlot(sec float64, slot int) error {
	if err := e.write(sec, evdev.EvAbs, evdev.AbsMtSlot, int32(slot)); err != nil {
		return err
	}
	e.slot = slot
	return nil
}

func (e *Engine) writeDiff(sec float64, d trace.Diff) error {
	fields := []struct {
		code  uint16
		value *int32
	}{
		{evdev.AbsMtTrackingID, d.ID},
		{evdev.AbsMtPositionX, d.X},
		{evdev.AbsMtPositionY, d.Y},
		{evdev.AbsMtPressure, d.Pressure},
		{evdev.AbsMtOrientation, d.Orientation},
		{evdev.AbsMtTouchMinor, d.TouchMinor},
		{evdev.AbsMtTouchMajor, d.TouchMajor},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := e.write(sec, evdev.EvAbs, f.code, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) sync(sec float64) error {
	return e.write(sec, evdev.EvSyn, evdev.SynReport, 0)
}

func (e *Engine) write(sec float64, typ, code uint16, value int32) error {
	if e.dryRun {
		return nil
	}
	return e.w.WriteEvent(evdev.At(sec, typ, code, value))
}
