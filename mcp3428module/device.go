// Package mcp3428module implements a driver and viam sensor for the MCP3428
// (and MCP3425/6/7) delta-sigma ADC.
// datasheet can be found at: https://ww1.microchip.com/downloads/en/DeviceDoc/22226a.pdf
package mcp3428module

import "time"

// Device holds the settings of one MCP342x and the bus it is reached on.
//
// A Device is not safe for concurrent use. Two callers interleaving control
// byte writes would corrupt the configuration of the conversion in flight, so
// callers sharing a device must serialize access themselves.
type Device struct {
	bus   Bus
	addr  byte
	sleep SleepFunc

	mode       Mode
	resolution Resolution
	gain       Gain
	channel    Channel

	// configured is set once WriteConfig succeeded in continuous mode and
	// cleared by any later settings change.
	configured bool
}

// New returns a Device with the power-on defaults: 12 bits / 240 SPS, gain x1,
// channel 1. The bus is not touched. addr is used as given.
func New(bus Bus, addr byte, mode Mode) *Device {
	return &Device{
		bus:   bus,
		addr:  addr,
		sleep: defaultSleep,
		mode:  mode,
	}
}

// WithResolution sets the resolution and returns d.
func (d *Device) WithResolution(r Resolution) *Device {
	d.SetResolution(r)
	return d
}

// WithGain sets the gain and returns d.
func (d *Device) WithGain(g Gain) *Device {
	d.SetGain(g)
	return d
}

// WithChannel sets the channel and returns d.
func (d *Device) WithChannel(c Channel) *Device {
	d.SetChannel(c)
	return d
}

// WithSleep replaces the delay used between bus transactions and returns d.
func (d *Device) WithSleep(fn SleepFunc) *Device {
	if fn == nil {
		fn = defaultSleep
	}
	d.sleep = fn
	return d
}

func (d *Device) SetChannel(c Channel) {
	d.channel = c
	d.configured = false
}

func (d *Device) SetMode(m Mode) {
	d.mode = m
	d.configured = false
}

func (d *Device) SetResolution(r Resolution) {
	d.resolution = r
	d.configured = false
}

func (d *Device) SetGain(g Gain) {
	d.gain = g
	d.configured = false
}

func (d *Device) Address() byte { return d.addr }
func (d *Device) Mode() Mode { return d.mode }
func (d *Device) Resolution() Resolution { return d.resolution }
func (d *Device) Gain() Gain { return d.gain }
func (d *Device) Channel() Channel { return d.channel }

// ControlByte returns the byte written to the device for the current
// settings. In one-shot mode the ready bit is set, which starts a conversion.
func (d *Device) ControlByte() byte {
	b := d.channel.Bits() | d.resolution.Bits() | d.gain.Bits() | d.mode.Bits()
	if d.mode == OneShot {
		b |= regNotReady
	}
	return b
}

// SettleDelay returns how long one conversion takes at the current resolution.
func (d *Device) SettleDelay() time.Duration {
	return d.resolution.spec().settle
}
