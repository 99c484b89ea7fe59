package mcp3428module

// Millivolts converts a raw sample taken at resolution r. Samples at either
// extreme code are saturated and return ErrVoltageTooHigh or ErrVoltageTooLow.
func (r Resolution) Millivolts(raw int16) (int32, error) {
	s := r.spec()
	switch raw {
	case s.max:
		return 0, ErrVoltageTooHigh
	case s.min:
		return 0, ErrVoltageTooLow
	}
	return int32(raw) * (refMillivolts * 2) / (1 << s.res), nil
}

// CalculateVoltage converts a raw sample at the current resolution to mV.
func (d *Device) CalculateVoltage(raw int16) (int32, error) {
	return d.resolution.Millivolts(raw)
}
