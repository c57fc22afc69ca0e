package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapd/internal/touch"
)

func tap(x, y int32, downSec, upSec float64) *touch.Finger {
	f := touch.NewFinger(1, downSec)
	f.X = touch.Axis{Value: x, Valid: true}
	f.Y = touch.Axis{Value: y, Valid: true}
	f.UpSec = upSec
	return f
}

func edgeRecognizer() *Recognizer {
	return NewRecognizer(nil, DefaultThresholds(),
		EdgeDetectors("prev", "next", "home"))
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	cases := []struct {
		x, y int32
		want Zone
	}{
		{300, 300, ZoneLeft},
		{800, 300, ZoneRight},
		{600, 300, ZoneNone},  // dead band between left and right
		{300, 1100, ZoneNone}, // dead band below the top strip
		{300, 1300, ZoneTop},  // top band wins regardless of x
		{800, 1300, ZoneTop},
		{500, 300, ZoneNone}, // boundaries are exclusive
		{700, 300, ZoneNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, th.Classify(c.x, c.y), "(%d,%d)", c.x, c.y)
	}
}

func TestDoubleTapLeftEdge(t *testing.T) {
	r := edgeRecognizer()

	// Two 50ms taps at (300,300), releases 200ms apart.
	_, ok := r.OnRelease(tap(300, 300, 10.00, 10.05))
	assert.False(t, ok)

	action, ok := r.OnRelease(tap(300, 300, 10.20, 10.25))
	require.True(t, ok)
	assert.Equal(t, "prev", action)
}

func TestMatchClearsMemory(t *testing.T) {
	r := edgeRecognizer()

	r.OnRelease(tap(300, 300, 10.00, 10.05))
	_, ok := r.OnRelease(tap(300, 300, 10.20, 10.25))
	require.True(t, ok)

	// A third tap must start a fresh pair, not match the cleared memory.
	_, ok = r.OnRelease(tap(300, 300, 10.30, 10.35))
	assert.False(t, ok)
}

func TestGapWindowBoundary(t *testing.T) {
	// Gap measured release-to-release; the 500ms boundary is exclusive.
	cases := []struct {
		name   string
		gap    float64
		expect bool
	}{
		{"just inside", 0.499, true},
		{"exactly at threshold", 0.500, false},
		{"one past", 0.501, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := edgeRecognizer()
			r.OnRelease(tap(300, 300, 9.95, 10.0))
			up := 10.0 + c.gap
			_, ok := r.OnRelease(tap(300, 300, up-0.05, up))
			assert.Equal(t, c.expect, ok)
		})
	}
}

func TestSlowPressIsNotATap(t *testing.T) {
	r := edgeRecognizer()

	// First press held 400ms: ignored, leaves no memory.
	_, ok := r.OnRelease(tap(300, 300, 10.00, 10.40))
	assert.False(t, ok)

	_, ok = r.OnRelease(tap(300, 300, 10.50, 10.55))
	assert.False(t, ok, "no prior quick tap to pair with")

	// Second quick tap pairs with the one above.
	_, ok = r.OnRelease(tap(300, 300, 10.60, 10.65))
	assert.True(t, ok)
}

func TestDurationBoundaryExclusive(t *testing.T) {
	r := edgeRecognizer()

	r.OnRelease(tap(300, 300, 10.00, 10.05))
	// Exactly 300ms press: not a tap.
	_, ok := r.OnRelease(tap(300, 300, 10.10, 10.40))
	assert.False(t, ok)
}

func TestDeadBandReleaseNeverPairs(t *testing.T) {
	r := edgeRecognizer()

	// (600,300) is in the x dead band: stored but unclassifiable.
	_, ok := r.OnRelease(tap(600, 300, 10.00, 10.05))
	assert.False(t, ok)

	_, ok = r.OnRelease(tap(600, 300, 10.10, 10.15))
	assert.False(t, ok, "zone none must never match")

	_, ok = r.OnRelease(tap(300, 300, 10.20, 10.25))
	assert.False(t, ok, "mixed zones must not match")
}

func TestTopBandBeatsLeftX(t *testing.T) {
	r := edgeRecognizer()

	// x would qualify as left, but y is in the top band.
	r.OnRelease(tap(300, 1300, 10.00, 10.05))
	action, ok := r.OnRelease(tap(300, 1300, 10.20, 10.25))
	require.True(t, ok)
	assert.Equal(t, "home", action)
}

func TestDifferentZonesDoNotPair(t *testing.T) {
	r := edgeRecognizer()

	r.OnRelease(tap(300, 300, 10.00, 10.05))
	_, ok := r.OnRelease(tap(800, 300, 10.20, 10.25))
	assert.False(t, ok)
}

func TestUnknownDetectorKindDropped(t *testing.T) {
	r := NewRecognizer(nil, DefaultThresholds(), []Detector{
		{Name: "bogus", Kind: Kind("triple_swirl"), Action: "x"},
		{Name: "left-edge", Kind: KindDoubleTapEdge, Zone: ZoneLeft, Action: "prev"},
	})

	require.Len(t, r.Detectors(), 1)
	assert.Equal(t, "left-edge", r.Detectors()[0].Name)
}

func TestZoneDetectorWithDistance(t *testing.T) {
	minX, maxX := int32(0), int32(1404)
	r := NewRecognizer(nil, DefaultThresholds(), []Detector{{
		Name:        "anywhere",
		Kind:        KindDoubleTapZone,
		Rect:        Rect{MinX: &minX, MaxX: &maxX},
		MaxDistance: 100,
		Action:      "poke",
	}})

	r.OnRelease(tap(600, 600, 10.00, 10.05))
	_, ok := r.OnRelease(tap(750, 600, 10.20, 10.25))
	assert.False(t, ok, "taps 150px apart exceed the tolerance")

	r.Reset()
	r.OnRelease(tap(600, 600, 11.00, 11.05))
	action, ok := r.OnRelease(tap(650, 620, 11.20, 11.25))
	require.True(t, ok)
	assert.Equal(t, "poke", action)
}

func TestDetectorOrderFirstMatchWins(t *testing.T) {
	r := NewRecognizer(nil, DefaultThresholds(), []Detector{
		{Name: "zone", Kind: KindDoubleTapZone, Rect: Rect{}, Action: "first"},
		{Name: "left", Kind: KindDoubleTapEdge, Zone: ZoneLeft, Action: "second"},
	})

	r.OnRelease(tap(300, 300, 10.00, 10.05))
	action, ok := r.OnRelease(tap(300, 300, 10.20, 10.25))
	require.True(t, ok)
	assert.Equal(t, "first", action)
}

func TestCustomTiming(t *testing.T) {
	r := NewRecognizer(nil, DefaultThresholds(), []Detector{{
		Name:           "patient",
		Kind:           KindDoubleTapEdge,
		Zone:           ZoneLeft,
		MaxTapDuration: time.Second,
		MaxGap:         2 * time.Second,
		Action:         "prev",
	}})

	r.OnRelease(tap(300, 300, 10.0, 10.8))
	_, ok := r.OnRelease(tap(300, 300, 12.0, 12.5))
	assert.True(t, ok)
}
