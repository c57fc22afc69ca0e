// Package gesture classifies finger releases against spatial zones and
// timing windows. The canonical detector is double-tap-at-screen-edge:
// two quick taps in the same edge zone within a bounded window trigger
// the action bound to that zone.
package gesture

// Zone names a region of the touch surface.
type Zone string

const (
	ZoneNone  Zone = ""
	ZoneLeft  Zone = "left"
	ZoneRight Zone = "right"
	ZoneTop   Zone = "top"
)

// Thresholds carve the surface into edge zones with deliberate dead
// bands between them, so overlapping matches cannot occur. Coordinates
// follow the panel: y grows toward the bottom band.
type Thresholds struct {
	// TopMinY: releases with y > TopMinY are the "top" band (the home
	// strip at the bottom of the panel in device coordinates).
	TopMinY int32
	// DeadMinY: releases with TopMinY >= y > DeadMinY fall in the dead
	// band and classify as no zone.
	DeadMinY int32
	// LeftMaxX: below the dead band, x < LeftMaxX is the left zone.
	LeftMaxX int32
	// RightMinX: x > RightMinX is the right zone. The gap between
	// LeftMaxX and RightMinX is a second dead band.
	RightMinX int32
}

// DefaultThresholds matches the 1404x1872 panel this tool grew up on.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TopMinY:   1200,
		DeadMinY:  1000,
		LeftMaxX:  500,
		RightMinX: 700,
	}
}

// Classify maps a release position to a zone. The top band wins before
// x is consulted, which keeps the zones disjoint by construction.
func (t Thresholds) Classify(x, y int32) Zone {
	if y > t.TopMinY {
		return ZoneTop
	}
	if y > t.DeadMinY {
		return ZoneNone
	}
	if x < t.LeftMaxX {
		return ZoneLeft
	}
	if x > t.RightMinX {
		return ZoneRight
	}
	return ZoneNone
}

// Rect is a rectangular region with inclusive bounds; a nil bound is
// unbounded on that side.
type Rect struct {
	MinX *int32
	MaxX *int32
	MinY *int32
	MaxY *int32
}

// Contains reports whether the point is inside the rectangle.
func (r Rect) Contains(x, y int32) bool {
	if r.MinX != nil && x < *r.MinX {
		return false
	}
	if r.MaxX != nil && x > *r.MaxX {
		return false
	}
	if r.MinY != nil && y < *r.MinY {
		return false
	}
	if r.MaxY != nil && y > *r.MaxY {
		return false
	}
	return true
}
