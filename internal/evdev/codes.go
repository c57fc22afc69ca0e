package evdev

// Event types. Ref: input-event-codes.h
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvAbs uint16 = 0x03

	SynReport uint16 = 0
)

// Multitouch absolute axis codes (type B slot protocol).
const (
	AbsMtSlot        uint16 = 0x2f // 47
	AbsMtTouchMajor  uint16 = 0x30 // 48
	AbsMtTouchMinor  uint16 = 0x31 // 49
	AbsMtOrientation uint16 = 0x34 // 52
	AbsMtPositionX   uint16 = 0x35 // 53
	AbsMtPositionY   uint16 = 0x36 // 54
	AbsMtTrackingID  uint16 = 0x39 // 57
	AbsMtPressure    uint16 = 0x3a // 58
)

// CodeName returns a human-readable name for a multitouch axis code,
// or the empty string when the code is not one we handle.
func CodeName(code uint16) string {
	switch code {
	case AbsMtSlot:
		return "ABS_MT_SLOT"
	case AbsMtTouchMajor:
		return "ABS_MT_TOUCH_MAJOR"
	case AbsMtTouchMinor:
		return "ABS_MT_TOUCH_MINOR"
	case AbsMtOrientation:
		return "ABS_MT_ORIENTATION"
	case AbsMtPositionX:
		return "ABS_MT_POSITION_X"
	case AbsMtPositionY:
		return "ABS_MT_POSITION_Y"
	case AbsMtTrackingID:
		return "ABS_MT_TRACKING_ID"
	case AbsMtPressure:
		return "ABS_MT_PRESSURE"
	}
	return ""
}
