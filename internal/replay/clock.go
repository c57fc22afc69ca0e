package replay

import "time"

// Clock abstracts wall time and suspension so pacing can be tested
// without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
