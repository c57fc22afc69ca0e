package trace

import (
	"sort"

	"tapd/internal/touch"
)

// Recorder converts commit batches from the slot tracker into minimal
// diff records. For each batch it emits up to two records: one RELEASE
// listing freed slots, then one UPDATE with per-slot diffs against each
// finger's previously committed snapshot.
type Recorder struct {
	enc *Encoder
}

// NewRecorder creates a Recorder writing through enc. A nil encoder
// makes Observe purely computational (used by tests and round-trips).
func NewRecorder(enc *Encoder) *Recorder {
	return &Recorder{enc: enc}
}

// Observe processes one batch and returns the emitted records in order.
// Finger traces are appended after diffing, never rewritten.
func (r *Recorder) Observe(b *touch.Batch) ([]Record, error) {
	var out []Record

	if len(b.Released) > 0 {
		rec := Record{Kind: Release, Sec: b.Sec, Slots: make(map[int]Diff, len(b.Released))}
		for slot := range b.Released {
			rec.Slots[slot] = Diff{}
		}
		out = append(out, rec)
	}

	if len(b.Updated) > 0 {
		slots := make(map[int]Diff, len(b.Updated))
		for slot, f := range b.Updated {
			d := diffFinger(f)
			if !d.Empty() {
				slots[slot] = d
			}
			f.Commit(b.Sec)
		}
		if len(slots) > 0 {
			out = append(out, Record{Kind: Update, Sec: b.Sec, Slots: slots})
		}
	}

	if r.enc != nil {
		for _, rec := range out {
			if err := r.enc.Write(rec); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// diffFinger computes the changed fields since the finger's last
// committed snapshot. A first commit carries the tracking id and every
// axis reported so far.
func diffFinger(f *touch.Finger) Diff {
	prev, has := f.LastCommitted()

	var d Diff
	if !has {
		d.ID = I32(f.ID)
	}
	d.X = axisDiff(f.X, prev.X, has)
	d.Y = axisDiff(f.Y, prev.Y, has)
	d.Pressure = axisDiff(f.Pressure, prev.Pressure, has)
	d.Orientation = axisDiff(f.Orientation, prev.Orientation, has)
	d.TouchMinor = axisDiff(f.TouchMinor, prev.TouchMinor, has)
	d.TouchMajor = axisDiff(f.TouchMajor, prev.TouchMajor, has)
	return d
}

func axisDiff(cur, prev touch.Axis, hasPrev bool) *int32 {
	if !cur.Valid {
		return nil
	}
	if hasPrev && prev.Valid && prev.Value == cur.Value {
		return nil
	}
	return I32(cur.Value)
}

// SortedSlots returns a record's slot ids in ascending order. Replay
// and tests want deterministic iteration over the slot map.
func SortedSlots(rec Record) []int {
	slots := make([]int, 0, len(rec.Slots))
	for slot := range rec.Slots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}
