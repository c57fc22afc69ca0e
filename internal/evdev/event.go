// Package evdev implements the small slice of the Linux evdev interface
// tapd needs: the fixed-width input_event wire record, the multitouch
// axis codes, and a device handle supporting exclusive grab and a
// select()-based readiness wait.
package evdev

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lunixbochs/struc"
)

// EventSize is the wire size of one input_event record.
//
// Field widths are fixed at 64/64/16/16/32 bits regardless of the host's
// C long size. This matches the 64-bit kernel layout and is a deliberate
// deviation from the native struct for cross-platform determinism of
// recorded traces.
const EventSize = 24

// Event mirrors struct input_event: timestamp, type, code, value.
// A zero Event (type 0, code 0, value 0) is the synchronization
// boundary separating logically simultaneous updates.
type Event struct {
	Sec   int64  `struc:"int64,little"`
	Usec  int64  `struc:"int64,little"`
	Type  uint16 `struc:"uint16,little"`
	Code  uint16 `struc:"uint16,little"`
	Value int32  `struc:"int32,little"`
}

// Sync reports whether the event is a SYN_REPORT commit point.
func (e Event) Sync() bool {
	return e.Type == EvSyn && e.Code == SynReport && e.Value == 0
}

// Seconds returns the event timestamp as fractional seconds.
func (e Event) Seconds() float64 {
	return float64(e.Sec) + float64(e.Usec)/1e6
}

// At builds an event carrying the given fractional-second timestamp.
// The microsecond part is rounded, not truncated, so values like 3.05
// survive the float64 round trip exactly.
func At(sec float64, typ, code uint16, value int32) Event {
	s := int64(sec)
	us := int64(math.Round((sec - float64(s)) * 1e6))
	if us >= 1e6 {
		s++
		us -= 1e6
	}
	return Event{
		Sec:   s,
		Usec:  us,
		Type:  typ,
		Code:  code,
		Value: value,
	}
}

var packOpts = &struc.Options{Order: binary.LittleEndian}

// Marshal packs the event into its 24-byte wire form.
func (e Event) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &e, packOpts); err != nil {
		return nil, fmt.Errorf("pack event: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalEvent decodes one wire record. The buffer must hold exactly
// one event; a short buffer is a channel error for the caller.
func UnmarshalEvent(b []byte) (Event, error) {
	var e Event
	if len(b) != EventSize {
		return e, fmt.Errorf("event record is %d bytes, want %d", len(b), EventSize)
	}
	if err := struc.UnpackWithOptions(bytes.NewReader(b), &e, packOpts); err != nil {
		return e, fmt.Errorf("unpack event: %w", err)
	}
	return e, nil
}
