package mcp3428module

import (
	"fmt"
	"strings"
)

// Mode selects between one-shot and continuous conversions.
type Mode byte

const (
	OneShot Mode = iota
	Continuous
)

// Bits returns the mode field of the control byte.
func (m Mode) Bits() byte {
	if m == Continuous {
		return regMode
	}
	return 0
}

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "one_shot"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("Mode(%d)", byte(m))
	}
}

// ParseMode converts a config value to a Mode. An empty string is one-shot.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "one_shot", "oneshot":
		return OneShot, nil
	case "continuous":
		return Continuous, nil
	default:
		return OneShot, fmt.Errorf("%q is not a valid mode. Choose from one_shot, continuous", s)
	}
}

func modeFromByte(b byte) Mode {
	if b&regMode != 0 {
		return Continuous
	}
	return OneShot
}

// Resolution is the conversion bit width and the sample rate that goes with it.
//
//   - 15 SPS -> 16 bits
//   - 60 SPS -> 14 bits
//   - 240 SPS -> 12 bits
//
// The zero value is 12 bits / 240 SPS, the power-on default of the device.
type Resolution byte

const (
	// Bits12Sps240 measures in 1mV steps.
	Bits12Sps240 Resolution = iota
	// Bits14Sps60 measures in 250uV steps.
	Bits14Sps60
	// Bits16Sps15 measures in 62.5uV steps.
	Bits16Sps15
)

func (r Resolution) spec() resolutionSpec {
	if int(r) >= len(resolutionTable) {
		return resolutionTable[Bits12Sps240]
	}
	return resolutionTable[r]
}

// Bits returns the sample rate field of the control byte.
func (r Resolution) Bits() byte { return r.spec().bits }

// ResBits returns the number of significant bits in a sample.
func (r Resolution) ResBits() uint8 { return r.spec().res }

// Max returns the highest output code, which signals positive saturation.
func (r Resolution) Max() int16 { return r.spec().max }

// Min returns the lowest output code, which signals negative saturation.
func (r Resolution) Min() int16 { return r.spec().min }

// SamplesPerSecond returns the nominal conversion rate.
func (r Resolution) SamplesPerSecond() int { return r.spec().sps }

// LSBMicrovolts returns the size of one output code at gain x1.
func (r Resolution) LSBMicrovolts() float64 { return r.spec().lsbUV }

func (r Resolution) String() string {
	if int(r) >= len(resolutionTable) {
		return fmt.Sprintf("Resolution(%d)", byte(r))
	}
	return fmt.Sprintf("%dbit/%dsps", r.ResBits(), r.SamplesPerSecond())
}

// ParseResolution maps a bit count from config to a Resolution. Zero is the default.
func ParseResolution(bits int) (Resolution, error) {
	switch bits {
	case 0, 12:
		return Bits12Sps240, nil
	case 14:
		return Bits14Sps60, nil
	case 16:
		return Bits16Sps15, nil
	default:
		return Bits12Sps240, fmt.Errorf("%v is not a valid resolution. Choose from 12,14,16", bits)
	}
}

func resolutionFromByte(b byte) Resolution {
	field := b & regRateMask
	for r, s := range resolutionTable {
		if s.bits == field {
			return Resolution(r)
		}
	}
	// 0b11 is reserved; the device treats it as 16 bits
	return Bits16Sps15
}

// Gain is the programmable gain amplifier setting. The zero value is x1.
type Gain byte

const (
	Gain1 Gain = iota
	Gain2
	Gain4
	Gain8
)

// Bits returns the gain field of the control byte.
func (g Gain) Bits() byte { return byte(g) & regGainMask }

// Factor returns the amplification multiplier.
func (g Gain) Factor() int { return 1 << g.Bits() }

func (g Gain) String() string { return fmt.Sprintf("x%d", g.Factor()) }

// ParseGain maps a multiplier from config to a Gain. Zero is the default.
func ParseGain(factor int) (Gain, error) {
	switch factor {
	case 0, 1:
		return Gain1, nil
	case 2:
		return Gain2, nil
	case 4:
		return Gain4, nil
	case 8:
		return Gain8, nil
	default:
		return Gain1, fmt.Errorf("%v is not a valid gain value. Choose from 1,2,4,8", factor)
	}
}

func gainFromByte(b byte) Gain { return Gain(b & regGainMask) }

// Channel is the input channel. The zero value is channel 1.
//
// The MCP3426 and MCP3427 only have channels 1 and 2; the MCP3425 only has 1.
type Channel byte

const (
	Channel1 Channel = iota
	Channel2
	Channel3
	Channel4
)

// Bits returns the channel field of the control byte.
func (c Channel) Bits() byte { return (byte(c) << regChannelShift) & regChannelMask }

// Number returns the 1-based channel number printed on the datasheet.
func (c Channel) Number() int { return int(c&0b11) + 1 }

func (c Channel) String() string { return fmt.Sprintf("channel_%d", c.Number()) }

// ParseChannel maps a 1-based channel number to a Channel.
func ParseChannel(n int) (Channel, error) {
	if n < 1 || n > 4 {
		return Channel1, fmt.Errorf("%v is not a valid channel. Choose from 1,2,3,4", n)
	}
	return Channel(n - 1), nil
}

func channelFromByte(b byte) Channel { return Channel((b & regChannelMask) >> regChannelShift) }
