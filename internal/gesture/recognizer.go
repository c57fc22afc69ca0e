package gesture

import (
	"log/slog"
	"time"

	"tapd/internal/touch"
)

// Kind selects a detector algorithm. Detectors are resolved once from
// configuration; entries with an unknown kind are dropped with a
// warning rather than failing the run.
type Kind string

const (
	// KindDoubleTapEdge pairs two quick taps in the same edge zone
	// (left/right/top per the shared thresholds).
	KindDoubleTapEdge Kind = "double_tap_edge"
	// KindDoubleTapZone pairs two quick taps inside an arbitrary
	// rectangle, optionally requiring the taps to be near each other.
	KindDoubleTapZone Kind = "double_tap_zone"
)

// Detector is one named detection rule: a kind, its parameters, and
// the action it triggers.
type Detector struct {
	Name string
	Kind Kind

	// Zone applies to KindDoubleTapEdge.
	Zone Zone
	// Rect applies to KindDoubleTapZone.
	Rect Rect
	// MaxDistance, when > 0, requires both taps of a zone double-tap to
	// lie within this Chebyshev distance of each other.
	MaxDistance int32

	// MaxTapDuration is the longest press still counting as a tap.
	MaxTapDuration time.Duration
	// MaxGap bounds the release-to-release interval of the pair.
	// The boundary is exclusive: a gap of exactly MaxGap does not match.
	MaxGap time.Duration

	Action string
}

const (
	// DefaultMaxTapDuration separates taps from drags and holds.
	DefaultMaxTapDuration = 300 * time.Millisecond
	// DefaultMaxGap is the double-tap pairing window.
	DefaultMaxGap = 500 * time.Millisecond
)

// EdgeDetectors builds the canonical left/right/top double-tap rules
// with default timing, bound to the given action names.
func EdgeDetectors(left, right, top string) []Detector {
	return []Detector{
		{Name: "left-edge", Kind: KindDoubleTapEdge, Zone: ZoneLeft, Action: left},
		{Name: "right-edge", Kind: KindDoubleTapEdge, Zone: ZoneRight, Action: right},
		{Name: "top-edge", Kind: KindDoubleTapEdge, Zone: ZoneTop, Action: top},
	}
}

// release is the recognizer's view of one finished tap.
type release struct {
	x, y     int32
	posValid bool
	upSec    float64
	duration float64
}

// Recognizer evaluates an ordered detector list against finger
// releases. It remembers at most one prior unmatched release; a miss
// replaces the memory, a match clears it.
type Recognizer struct {
	log        *slog.Logger
	thresholds Thresholds
	detectors  []Detector

	mem    *release
	maxTap float64 // seconds; eligibility bound for entering memory
}

// NewRecognizer resolves the detector list. Detectors missing timing
// parameters get the defaults; entries with an unknown kind are logged
// and removed.
func NewRecognizer(log *slog.Logger, th Thresholds, detectors []Detector) *Recognizer {
	if log == nil {
		log = slog.Default()
	}

	r := &Recognizer{log: log, thresholds: th}
	for _, d := range detectors {
		switch d.Kind {
		case KindDoubleTapEdge, KindDoubleTapZone:
		default:
			log.Warn("dropping detector with unknown kind",
				"detector", d.Name, "kind", string(d.Kind))
			continue
		}
		if d.MaxTapDuration <= 0 {
			d.MaxTapDuration = DefaultMaxTapDuration
		}
		if d.MaxGap <= 0 {
			d.MaxGap = DefaultMaxGap
		}
		r.detectors = append(r.detectors, d)
		if tap := d.MaxTapDuration.Seconds(); tap > r.maxTap {
			r.maxTap = tap
		}
	}
	return r
}

// Detectors returns the active (resolved) detector list.
func (r *Recognizer) Detectors() []Detector { return r.detectors }

// OnRelease classifies one released finger. Returns the name of the
// action to run, or false when nothing matched. Releases longer than
// every detector's tap threshold are ignored outright, as a drag or
// hold, and do not disturb the pairing memory.
func (r *Recognizer) OnRelease(f *touch.Finger) (string, bool) {
	cur := release{
		x:        f.X.Value,
		y:        f.Y.Value,
		posValid: f.X.Valid && f.Y.Valid,
		upSec:    f.UpSec,
		duration: f.DownDuration(),
	}

	if cur.duration >= r.maxTap || !cur.posValid {
		return "", false
	}

	if r.mem != nil {
		for _, d := range r.detectors {
			if r.match(d, *r.mem, cur) {
				r.log.Debug("gesture recognized",
					"detector", d.Name, "action", d.Action,
					"x", cur.x, "y", cur.y)
				r.mem = nil
				return d.Action, true
			}
		}
	}

	// No pair; this release starts (or restarts) the window.
	r.mem = &cur
	return "", false
}

// Reset discards the pairing memory.
func (r *Recognizer) Reset() { r.mem = nil }

func (r *Recognizer) match(d Detector, first, second release) bool {
	maxTap := d.MaxTapDuration.Seconds()
	if first.duration >= maxTap || second.duration >= maxTap {
		return false
	}
	if gap := second.upSec - first.upSec; gap >= d.MaxGap.Seconds() {
		return false
	}

	switch d.Kind {
	case KindDoubleTapEdge:
		zone := r.thresholds.Classify(second.x, second.y)
		return zone != ZoneNone &&
			zone == d.Zone &&
			r.thresholds.Classify(first.x, first.y) == zone

	case KindDoubleTapZone:
		if !d.Rect.Contains(first.x, first.y) || !d.Rect.Contains(second.x, second.y) {
			return false
		}
		if d.MaxDistance > 0 {
			if chebyshev(first.x, second.x) > d.MaxDistance ||
				chebyshev(first.y, second.y) > d.MaxDistance {
				return false
			}
		}
		return true
	}
	return false
}

func chebyshev(a, b int32) int32 {
	if a > b {
		return a - b
	}
	return b - a
}
