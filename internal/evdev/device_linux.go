//go:build linux

package evdev

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// eviocgrab is the EVIOCGRAB ioctl request: _IOW('E', 0x90, int).
// x/sys/unix ships no EVIOC* constants, so the number is spelled out.
const eviocgrab = 0x40044590

// Device is an open evdev character device. The same handle is used for
// reading live events and injecting synthetic ones; tapd is
// single-threaded so no locking is needed.
type Device struct {
	file *os.File
	path string
}

// ResolvePath turns a device argument into a device node path.
// A value that exists on disk is used as-is; otherwise it is taken as an
// event index ("3" -> /dev/input/event3).
func ResolvePath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return filepath.Join("/dev/input", "event"+arg)
}

// Open opens the device read-write (writes are needed for injection).
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device: %w", err)
	}
	return &Device{file: f, path: path}, nil
}

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// Grab requests exclusive access (EVIOCGRAB) so events stop reaching
// other consumers. One attempt; the caller retries with backoff.
func (d *Device) Grab() error {
	if err := unix.IoctlSetInt(int(d.file.Fd()), eviocgrab, 1); err != nil {
		return fmt.Errorf("EVIOCGRAB %s: %w", d.path, err)
	}
	return nil
}

// Ungrab releases a previous exclusive grab.
func (d *Device) Ungrab() error {
	if err := unix.IoctlSetInt(int(d.file.Fd()), eviocgrab, 0); err != nil {
		return fmt.Errorf("EVIOCGRAB release %s: %w", d.path, err)
	}
	return nil
}

// Wait blocks until the device is readable, the timeout elapses, or the
// descriptor enters an error state. A negative timeout waits forever.
func (d *Device) Wait(timeout time.Duration) (ready bool, err error) {
	fd := int(d.file.Fd())

	// The sets and timeout are rebuilt every attempt: select leaves
	// fd_set contents unspecified after EINTR, and the kernel may have
	// decremented the timeval.
	for {
		var readSet, errSet unix.FdSet
		readSet.Set(fd)
		errSet.Set(fd)

		var tv *unix.Timeval
		if timeout >= 0 {
			t := unix.NsecToTimeval(timeout.Nanoseconds())
			tv = &t
		}

		n, err := unix.Select(fd+1, &readSet, nil, &errSet, tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("select %s: %w", d.path, err)
		}
		if n > 0 && errSet.IsSet(fd) {
			return false, fmt.Errorf("input device %s in error state", d.path)
		}
		return n > 0 && readSet.IsSet(fd), nil
	}
}

// ReadEvent reads exactly one wire record. A short read means the
// stream is corrupt and the run loop must terminate.
func (d *Device) ReadEvent() (Event, error) {
	buf := make([]byte, EventSize)
	n, err := d.file.Read(buf)
	if err != nil {
		return Event{}, fmt.Errorf("read %s: %w", d.path, err)
	}
	if n != EventSize {
		return Event{}, fmt.Errorf("short read from %s: %d bytes", d.path, n)
	}
	return UnmarshalEvent(buf)
}

// WriteEvent injects one record into the device stream.
func (d *Device) WriteEvent(e Event) error {
	b, err := e.Marshal()
	if err != nil {
		return err
	}
	if _, err := d.file.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// Close closes the device. A held grab is released implicitly.
func (d *Device) Close() error {
	return d.file.Close()
}
