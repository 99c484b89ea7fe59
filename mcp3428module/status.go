package mcp3428module

// Status is the configuration register returned as the third byte of every read.
type Status byte

// DecodeStatus keeps the whole byte; only the ready bit drives the protocol.
func DecodeStatus(b byte) Status {
	return Status(b)
}

// IsReady reports whether the sample read with this status is a new result.
func (s Status) IsReady() bool {
	return byte(s)&regNotReady == 0
}

// The remaining bits echo the settings the device is running with.

func (s Status) Mode() Mode { return modeFromByte(byte(s)) }
func (s Status) Resolution() Resolution { return resolutionFromByte(byte(s)) }
func (s Status) Gain() Gain { return gainFromByte(byte(s)) }
func (s Status) Channel() Channel { return channelFromByte(byte(s)) }

// Matches reports whether the echoed settings are those of d.
func (s Status) Matches(d *Device) bool {
	return byte(s)&^regNotReady == d.ControlByte()&^regNotReady
}
