package action

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapd/internal/gesture"
	"tapd/internal/replay"
	"tapd/internal/trace"
)

func TestBuiltinCatalog(t *testing.T) {
	c := NewCatalog(nil)
	assert.Equal(t, []string{"home", "next", "prev", "recent"}, c.Names())

	prev, ok := c.Get(Prev)
	require.True(t, ok)
	require.Len(t, prev.Paths, 1)
	assert.Greater(t, prev.Paths[0].Start.X, prev.Paths[0].End.X,
		"prev swipes right to left")

	next, ok := c.Get(Next)
	require.True(t, ok)
	assert.Less(t, next.Paths[0].Start.X, next.Paths[0].End.X,
		"next swipes left to right")

	home, ok := c.Get(Home)
	require.True(t, ok)
	assert.Greater(t, home.Paths[0].Start.Y, home.Paths[0].End.Y,
		"home swipes upward")

	recent, ok := c.Get(Recent)
	require.True(t, ok)
	assert.Len(t, recent.Paths, 2)
}

func TestBuiltinSourcesProduceRecords(t *testing.T) {
	c := NewCatalog(nil)
	for _, name := range c.Names() {
		a, _ := c.Get(name)
		recs, err := trace.ReadAll(a.Source())
		require.NoError(t, err, name)
		assert.NotEmpty(t, recs, name)
		assert.Equal(t, trace.Release, recs[len(recs)-1].Kind, name)
	}
}

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()
	assert.Equal(t, Prev, b[gesture.ZoneLeft])
	assert.Equal(t, Next, b[gesture.ZoneRight])
	assert.Equal(t, Home, b[gesture.ZoneTop])
}

func TestAddValidation(t *testing.T) {
	c := NewCatalog(nil)
	assert.Error(t, c.Add(Action{Name: ""}))
	assert.Error(t, c.Add(Action{Name: "empty"}))
	assert.Error(t, c.Add(Action{
		Name:  "both",
		Trace: []trace.Record{{Kind: trace.Update}},
		Paths: []replay.Path{{Duration: time.Millisecond}},
	}))

	require.NoError(t, c.Add(Action{
		Name:  "tap",
		Paths: []replay.Path{{Start: replay.Point{X: 1, Y: 1}, End: replay.Point{X: 1, Y: 1}, Duration: 40 * time.Millisecond}},
	}))
	_, ok := c.Get("tap")
	assert.True(t, ok)
}

func TestPathSpecConversion(t *testing.T) {
	spec := PathSpec{
		Start:      replay.Point{X: 10, Y: 20},
		End:        replay.Point{X: 30, Y: 40},
		DurationMs: 300,
		IntervalMs: 10,
		DelayMs:    50,
		Pressure:   60,
		ID:         7,
	}
	p := spec.Path()
	assert.Equal(t, 300*time.Millisecond, p.Duration)
	assert.Equal(t, 10*time.Millisecond, p.Interval)
	assert.Equal(t, 50*time.Millisecond, p.Delay)

	_, err := Paths([]PathSpec{{}})
	assert.Error(t, err, "zero duration rejected")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	tracePath := filepath.Join(dir, "flick.trace")
	ndjson := `["UPDATE", 1.0, {"0": {"id": 5, "x": 100, "y": 200}}]
["RELEASE", 1.1, {"0": {}}]
`
	require.NoError(t, os.WriteFile(tracePath, []byte(ndjson), 0o644))

	jsonPath := filepath.Join(dir, "nudge.json")
	pathSpec := `[{"start": {"x": 100, "y": 100}, "end": {"x": 150, "y": 100}, "duration_ms": 100}]`
	require.NoError(t, os.WriteFile(jsonPath, []byte(pathSpec), 0o644))

	// Malformed entries are skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.trace"), []byte(`["BOGUS"]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c := NewCatalog(nil)
	require.NoError(t, c.LoadDir(dir))

	flick, ok := c.Get("flick")
	require.True(t, ok)
	require.Len(t, flick.Trace, 2)
	assert.Equal(t, trace.Update, flick.Trace[0].Kind)
	assert.Equal(t, int32(100), *flick.Trace[0].Slots[0].X)

	nudge, ok := c.Get("nudge")
	require.True(t, ok)
	require.Len(t, nudge.Paths, 1)
	assert.Equal(t, 100*time.Millisecond, nudge.Paths[0].Duration)

	_, ok = c.Get("broken")
	assert.False(t, ok)
}

func TestLoadDirMissing(t *testing.T) {
	c := NewCatalog(nil)
	assert.Error(t, c.LoadDir(filepath.Join(t.TempDir(), "nope")))
}
