package touch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapd/internal/evdev"
)

func abs(sec float64, code uint16, value int32) evdev.Event {
	return evdev.At(sec, evdev.EvAbs, code, value)
}

func syn(sec float64) evdev.Event {
	return evdev.At(sec, evdev.EvSyn, evdev.SynReport, 0)
}

func feed(t *testing.T, tr *Tracker, evs ...evdev.Event) []*Batch {
	t.Helper()
	var batches []*Batch
	for _, ev := range evs {
		if b := tr.Update(ev); b != nil {
			batches = append(batches, b)
		}
	}
	return batches
}

func TestImplicitSlotZero(t *testing.T) {
	tr := NewTracker(nil)

	batches := feed(t, tr,
		abs(1.0, evdev.AbsMtTrackingID, 42),
		abs(1.0, evdev.AbsMtPositionX, 300),
		abs(1.0, evdev.AbsMtPositionY, 700),
		syn(1.0),
	)

	require.Len(t, batches, 1)
	b := batches[0]
	require.Contains(t, b.Updated, 0)
	f := b.Updated[0]
	assert.Equal(t, int32(42), f.ID)
	assert.Equal(t, int32(300), f.X.Value)
	assert.True(t, f.X.Valid)
	assert.False(t, f.Pressure.Valid)
	assert.Equal(t, 1.0, f.DownSec)
}

func TestSlotIndependenceInterleaved(t *testing.T) {
	tr := NewTracker(nil)

	// Two fingers, axis updates interleaved across slots within one batch.
	batches := feed(t, tr,
		abs(2.0, evdev.AbsMtTrackingID, 7),
		abs(2.0, evdev.AbsMtPositionX, 100),
		abs(2.0, evdev.AbsMtSlot, 1),
		abs(2.0, evdev.AbsMtTrackingID, 8),
		abs(2.0, evdev.AbsMtPositionX, 500),
		abs(2.0, evdev.AbsMtSlot, 0),
		abs(2.0, evdev.AbsMtPositionY, 111),
		abs(2.0, evdev.AbsMtSlot, 1),
		abs(2.0, evdev.AbsMtPositionY, 555),
		abs(2.0, evdev.AbsMtPressure, 60),
		syn(2.0),
	)

	require.Len(t, batches, 1)
	b := batches[0]
	require.Len(t, b.Updated, 2)
	assert.Empty(t, b.Released)

	f0, f1 := b.Updated[0], b.Updated[1]
	assert.Equal(t, int32(7), f0.ID)
	assert.Equal(t, int32(100), f0.X.Value)
	assert.Equal(t, int32(111), f0.Y.Value)
	assert.False(t, f0.Pressure.Valid)

	assert.Equal(t, int32(8), f1.ID)
	assert.Equal(t, int32(500), f1.X.Value)
	assert.Equal(t, int32(555), f1.Y.Value)
	assert.Equal(t, int32(60), f1.Pressure.Value)
}

func TestReleaseKeepsFinalAxisValues(t *testing.T) {
	tr := NewTracker(nil)

	feed(t, tr,
		abs(3.0, evdev.AbsMtTrackingID, 9),
		abs(3.0, evdev.AbsMtPositionX, 310),
		abs(3.0, evdev.AbsMtPositionY, 806),
		syn(3.0),
	)

	batches := feed(t, tr,
		abs(3.05, evdev.AbsMtTrackingID, -1),
		syn(3.05),
	)

	require.Len(t, batches, 1)
	b := batches[0]
	assert.Empty(t, b.Updated)
	require.Contains(t, b.Released, 0)

	f := b.Released[0]
	assert.Equal(t, int32(310), f.X.Value)
	assert.Equal(t, int32(806), f.Y.Value)
	assert.Equal(t, 3.05, f.UpSec)
	assert.InDelta(t, 0.05, f.DownDuration(), 1e-9)
	assert.Equal(t, 0, tr.Active())
}

func TestReleaseAndTouchSameBatch(t *testing.T) {
	tr := NewTracker(nil)

	feed(t, tr,
		abs(4.0, evdev.AbsMtSlot, 1),
		abs(4.0, evdev.AbsMtTrackingID, 3),
		abs(4.0, evdev.AbsMtPositionX, 10),
		syn(4.0),
	)

	// Slot 1 releases while slot 0 touches down in the same batch.
	batches := feed(t, tr,
		abs(4.1, evdev.AbsMtTrackingID, -1),
		abs(4.1, evdev.AbsMtSlot, 0),
		abs(4.1, evdev.AbsMtTrackingID, 4),
		abs(4.1, evdev.AbsMtPositionX, 20),
		syn(4.1),
	)

	require.Len(t, batches, 1)
	b := batches[0]
	require.Contains(t, b.Released, 1)
	require.Contains(t, b.Updated, 0)
	assert.Equal(t, int32(3), b.Released[1].ID)
	assert.Equal(t, int32(4), b.Updated[0].ID)
	assert.Equal(t, 1, tr.Active())
}

func TestAnomalousAxisWithoutFingerIgnored(t *testing.T) {
	tr := NewTracker(nil)

	batches := feed(t, tr,
		abs(5.0, evdev.AbsMtPositionX, 100),
		syn(5.0),
	)
	assert.Empty(t, batches)
}

func TestEmptySyncProducesNoBatch(t *testing.T) {
	tr := NewTracker(nil)
	assert.Nil(t, tr.Update(syn(6.0)))
}

func TestRedundantSlotSelectStillUpdatesCurrent(t *testing.T) {
	tr := NewTracker(nil)

	feed(t, tr,
		abs(7.0, evdev.AbsMtTrackingID, 5),
		abs(7.0, evdev.AbsMtPositionX, 50),
		syn(7.0),
	)

	// Next batch omits the slot select; updates apply to the current slot.
	batches := feed(t, tr,
		abs(7.1, evdev.AbsMtPositionX, 60),
		syn(7.1),
	)

	require.Len(t, batches, 1)
	assert.Equal(t, int32(60), batches[0].Updated[0].X.Value)
}

func TestCommitAppendsTrace(t *testing.T) {
	tr := NewTracker(nil)

	b := feed(t, tr,
		abs(8.0, evdev.AbsMtTrackingID, 1),
		abs(8.0, evdev.AbsMtPositionX, 5),
		syn(8.0),
	)[0]
	b.CommitUpdated()

	f := b.Updated[0]
	require.Len(t, f.Trace(), 1)
	last, ok := f.LastCommitted()
	require.True(t, ok)
	assert.Equal(t, int32(5), last.X.Value)
	assert.Equal(t, 8.0, last.Sec)
}
