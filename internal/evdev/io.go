package evdev

// Writer is the injection side of the event channel. *Device implements
// it; tests substitute an in-memory sink.
type Writer interface {
	WriteEvent(Event) error
}

// Reader is the live side of the event channel.
type Reader interface {
	ReadEvent() (Event, error)
}
