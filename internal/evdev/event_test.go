package evdev

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshalWireLayout(t *testing.T) {
	e := Event{Sec: 1677239624, Usec: 380750, Type: EvAbs, Code: AbsMtPositionX, Value: 797}

	b, err := e.Marshal()
	require.NoError(t, err)
	require.Len(t, b, EventSize)

	assert.Equal(t, uint64(1677239624), binary.LittleEndian.Uint64(b[0:8]))
	assert.Equal(t, uint64(380750), binary.LittleEndian.Uint64(b[8:16]))
	assert.Equal(t, uint16(EvAbs), binary.LittleEndian.Uint16(b[16:18]))
	assert.Equal(t, uint16(AbsMtPositionX), binary.LittleEndian.Uint16(b[18:20]))
	assert.Equal(t, int32(797), int32(binary.LittleEndian.Uint32(b[20:24])))

	back, err := UnmarshalEvent(b)
	require.NoError(t, err)
	assert.Equal(t, e, back)
}

func TestEventMarshalNegativeValue(t *testing.T) {
	e := Event{Sec: 10, Usec: 0, Type: EvAbs, Code: AbsMtTrackingID, Value: -1}

	b, err := e.Marshal()
	require.NoError(t, err)

	back, err := UnmarshalEvent(b)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), back.Value)
}

func TestUnmarshalEventShortBuffer(t *testing.T) {
	_, err := UnmarshalEvent(make([]byte, 16))
	assert.Error(t, err)
}

func TestSync(t *testing.T) {
	assert.True(t, Event{}.Sync())
	assert.False(t, Event{Type: EvAbs}.Sync())
	assert.False(t, Event{Type: EvSyn, Code: SynReport, Value: 1}.Sync())
}

func TestAtSeconds(t *testing.T) {
	e := At(1677239624.5, EvSyn, SynReport, 0)
	assert.Equal(t, int64(1677239624), e.Sec)
	assert.Equal(t, int64(500000), e.Usec)
	assert.InDelta(t, 1677239624.5, e.Seconds(), 1e-6)
}

func TestAtRoundsMicroseconds(t *testing.T) {
	// 3.05 is not exactly representable; the fraction is a hair under
	// 0.05 and truncation would land on 49999 microseconds.
	e := At(3.05, EvAbs, AbsMtPositionX, 100)
	assert.Equal(t, int64(3), e.Sec)
	assert.Equal(t, int64(50000), e.Usec)
	assert.Equal(t, 3.05, e.Seconds())
}

func TestAtCarriesRoundedSecond(t *testing.T) {
	e := At(6.9999999, EvSyn, SynReport, 0)
	assert.Equal(t, int64(7), e.Sec)
	assert.Equal(t, int64(0), e.Usec)
}
