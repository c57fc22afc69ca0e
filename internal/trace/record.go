// Package trace defines the gesture interchange format: ordered,
// timestamped per-slot diffs, serialized as newline-delimited JSON
// 3-element arrays of the form
//
//	["UPDATE", 1677239624.38075, {"0": {"id": 3675, "x": 797, ...}}]
//	["RELEASE", 1677239624.692669, {"0": {}}]
//
// The same model is produced by the diff recorder from live input, by
// the path generator, and consumed by the replay engine.
package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the top-level record type.
type Kind string

const (
	Update  Kind = "UPDATE"
	Release Kind = "RELEASE"
)

// Diff is the subset of a finger's axis values that changed since its
// previous committed snapshot. A nil field means "unchanged". The first
// diff for a finger always carries the tracking id so slots can be
// reconstructed deterministically on replay.
type Diff struct {
	ID          *int32 `json:"id,omitempty"`
	X           *int32 `json:"x,omitempty"`
	Y           *int32 `json:"y,omitempty"`
	Pressure    *int32 `json:"pressure,omitempty"`
	Orientation *int32 `json:"orientation,omitempty"`
	TouchMinor  *int32 `json:"touch_minor,omitempty"`
	TouchMajor  *int32 `json:"touch_major,omitempty"`
}

// Empty reports whether the diff carries no fields at all.
func (d Diff) Empty() bool {
	return d.ID == nil && d.X == nil && d.Y == nil && d.Pressure == nil &&
		d.Orientation == nil && d.TouchMinor == nil && d.TouchMajor == nil
}

// Record is one trace entry: a batch of per-slot diffs sharing a
// logical timestamp (fractional seconds).
type Record struct {
	Kind  Kind
	Sec   float64
	Slots map[int]Diff
}

// MarshalJSON encodes the record as the 3-element array form with
// string slot keys, matching the on-disk trace format.
func (r Record) MarshalJSON() ([]byte, error) {
	slots := make(map[string]Diff, len(r.Slots))
	for slot, d := range r.Slots {
		slots[strconv.Itoa(slot)] = d
	}
	return json.Marshal([3]any{string(r.Kind), r.Sec, slots})
}

// UnmarshalJSON decodes the 3-element array form. Slot keys may be
// quoted integers.
func (r *Record) UnmarshalJSON(b []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("trace record: %w", err)
	}
	if len(arr) != 3 {
		return fmt.Errorf("trace record has %d elements, want 3", len(arr))
	}

	var kind string
	if err := json.Unmarshal(arr[0], &kind); err != nil {
		return fmt.Errorf("trace record kind: %w", err)
	}
	if err := json.Unmarshal(arr[1], &r.Sec); err != nil {
		return fmt.Errorf("trace record timestamp: %w", err)
	}
	var slots map[string]Diff
	if err := json.Unmarshal(arr[2], &slots); err != nil {
		return fmt.Errorf("trace record detail: %w", err)
	}

	r.Kind = Kind(kind)
	r.Slots = make(map[int]Diff, len(slots))
	for key, d := range slots {
		slot, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("trace record slot %q: %w", key, err)
		}
		r.Slots[slot] = d
	}
	return nil
}

// I32 returns a pointer to v, for building diffs.
func I32(v int32) *int32 { return &v }
