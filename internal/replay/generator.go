package replay

import (
	"io"
	"math"
	"time"

	"tapd/internal/trace"
)

// Point is a surface coordinate.
type Point struct {
	X int32 `json:"x" toml:"x" yaml:"x"`
	Y int32 `json:"y" toml:"y" yaml:"y"`
}

// Path describes one straight-line synthetic finger stroke.
type Path struct {
	Start    Point
	End      Point
	Duration time.Duration
	// Interval is the sampling step; defaults to 20ms.
	Interval time.Duration
	// Delay postpones the finger's touch-down relative to replay start.
	Delay time.Duration
	// Pressure, when > 0, is reported on touch-down.
	Pressure int32
	// ID is the synthetic tracking id; 0 picks one automatically.
	ID int32
}

// DefaultInterval is the sampling step used when a path leaves the
// interval unset.
const DefaultInterval = 20 * time.Millisecond

// sample computes the interpolated position at time t (clamped to the
// path duration). Coordinates round to the nearest integer per axis.
func (p Path) sample(t time.Duration) Point {
	if t >= p.Duration || p.Duration <= 0 {
		return p.End
	}
	frac := float64(t) / float64(p.Duration)
	return Point{
		X: p.Start.X + int32(math.Round(float64(p.End.X-p.Start.X)*frac)),
		Y: p.Start.Y + int32(math.Round(float64(p.End.Y-p.Start.Y)*frac)),
	}
}

// pathState tracks one stroke through generation.
type pathState struct {
	path Path
	id   int32

	slot     int // -1 until the first sample is emitted
	step     int
	sampled  bool // all samples emitted
	released bool

	lastX, lastY int32
	emitted      bool // at least one sample emitted (id sent)
}

// sampleTimes returns the logical time of the path's next pending
// sample, including the trailing release one interval after the end.
func (s *pathState) nextTime() (float64, bool) {
	if s.released {
		return 0, false
	}
	if s.sampled {
		return (s.path.Delay + s.path.Duration + s.interval()).Seconds(), true
	}
	t := time.Duration(s.step) * s.interval()
	if t > s.path.Duration {
		t = s.path.Duration
	}
	return (s.path.Delay + t).Seconds(), true
}

func (s *pathState) interval() time.Duration {
	if s.path.Interval > 0 {
		return s.path.Interval
	}
	return DefaultInterval
}

// advance moves past the current sample, flagging completion when the
// end point has been consumed.
func (s *pathState) advance() {
	t := time.Duration(s.step) * s.interval()
	s.step++
	if t >= s.path.Duration {
		s.sampled = true
	}
}

// generator merges per-path sample streams into trace records by
// ascending logical time. It implements trace.Source lazily; restart
// by generating again.
type generator struct {
	paths []*pathState
	slots map[int]bool // synthetic slots in use
}

// Generate builds a lazy trace for a set of concurrent finger paths.
// Fingers are bound to the lowest free synthetic slot at first
// appearance and released one interval after their path ends. Samples
// identical to a finger's previous one are suppressed.
func Generate(paths []Path) trace.Source {
	g := &generator{slots: make(map[int]bool)}
	for i, p := range paths {
		id := p.ID
		if id == 0 {
			id = int32(1000 + i)
		}
		g.paths = append(g.paths, &pathState{path: p, id: id, slot: -1})
	}
	return g
}

func (g *generator) Next() (trace.Record, error) {
	for {
		due, t, release := g.due()
		if len(due) == 0 {
			return trace.Record{}, io.EOF
		}

		if release {
			rec := trace.Record{Kind: trace.Release, Sec: t, Slots: make(map[int]trace.Diff)}
			for _, s := range due {
				rec.Slots[s.slot] = trace.Diff{}
				delete(g.slots, s.slot)
				s.released = true
			}
			return rec, nil
		}

		rec := trace.Record{Kind: trace.Update, Sec: t, Slots: make(map[int]trace.Diff)}
		for _, s := range due {
			d, changed := g.sampleDiff(s, t)
			s.advance()
			if changed {
				rec.Slots[s.slot] = d
			}
		}
		if len(rec.Slots) > 0 {
			return rec, nil
		}
		// Every due sample was identical to its predecessor; keep going.
	}
}

// due collects the paths whose next emission shares the earliest
// logical time. Releases and updates never mix in one record; at equal
// times releases go first, as the recorder writes them.
func (g *generator) due() (due []*pathState, t float64, release bool) {
	const eps = 1e-9

	for _, s := range g.paths {
		st, ok := s.nextTime()
		if !ok {
			continue
		}
		isRelease := s.sampled
		switch {
		case len(due) == 0 || st < t-eps:
			due = []*pathState{s}
			t = st
			release = isRelease
		case st <= t+eps:
			if isRelease == release {
				due = append(due, s)
			} else if isRelease {
				// Release preempts updates at the same instant.
				due = []*pathState{s}
				release = true
			}
		}
	}
	return due, t, release
}

// sampleDiff produces the delta for one path sample, assigning a slot
// and emitting id/pressure on the finger's first sample.
func (g *generator) sampleDiff(s *pathState, t float64) (trace.Diff, bool) {
	rel := time.Duration((t - s.path.Delay.Seconds()) * float64(time.Second))
	pt := s.path.sample(rel)

	if !s.emitted {
		s.slot = g.lowestFreeSlot()
		g.slots[s.slot] = true
		s.emitted = true
		s.lastX, s.lastY = pt.X, pt.Y

		d := trace.Diff{ID: trace.I32(s.id), X: trace.I32(pt.X), Y: trace.I32(pt.Y)}
		if s.path.Pressure > 0 {
			d.Pressure = trace.I32(s.path.Pressure)
		}
		return d, true
	}

	var d trace.Diff
	changed := false
	if pt.X != s.lastX {
		d.X = trace.I32(pt.X)
		s.lastX = pt.X
		changed = true
	}
	if pt.Y != s.lastY {
		d.Y = trace.I32(pt.Y)
		s.lastY = pt.Y
		changed = true
	}
	return d, changed
}

func (g *generator) lowestFreeSlot() int {
	for slot := 0; ; slot++ {
		if !g.slots[slot] {
			return slot
		}
	}
}
