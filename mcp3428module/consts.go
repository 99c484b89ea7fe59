package mcp3428module

import "time"

// Non-iota consts
const (
	defaultI2Caddr = 0x68

	// refMillivolts is the internal reference: the input range is +-2048mV.
	refMillivolts int32 = 2048

	// oneShotGuard is added to the settle delay before the first one-shot read.
	oneShotGuard = 2 * time.Millisecond
	// pollInterval is the wait between two reads that reported not ready.
	pollInterval = 1 * time.Millisecond

	// readLen is the size of every read: sample high, sample low, config register.
	readLen = 3
)

// Configuration register (same layout for the written control byte and the echoed status byte)
const (
	regNotReady    byte = 0b1000_0000 //RDY   write:1 starts a one-shot conversion   read:1 result not updated
	regChannelMask byte = 0b0110_0000 //C1-C0 channel select 00:CH1 01:CH2 10:CH3 11:CH4          (00-Default)
	regMode        byte = 0b0001_0000 //O/C   conversion mode  1:Continuous 0:One-shot             (1-Default)
	regRateMask    byte = 0b0000_1100 //S1-S0 sample rate      00:240SPS 01:60SPS 10:15SPS         (00-Default)
	regGainMask    byte = 0b0000_0011 //G1-G0 PGA gain         00:x1 01:x2 10:x4 11:x8             (00-Default)

	regChannelShift = 5
	regRateShift    = 2
)

// resolutionSpec holds everything derived from a resolution selection. Keep the
// saturation codes here so the boundaries can be read in one place.
type resolutionSpec struct {
	bits   byte
	res    uint8
	max    int16
	min    int16
	sps    int
	settle time.Duration
	lsbUV  float64
}

var resolutionTable = [...]resolutionSpec{
	Bits12Sps240: {bits: 0b0000_0000, res: 12, max: 2047, min: -2048, sps: 240, settle: 4 * time.Millisecond, lsbUV: 1000},
	Bits14Sps60:  {bits: 0b0000_0100, res: 14, max: 8191, min: -8192, sps: 60, settle: 15 * time.Millisecond, lsbUV: 250},
	Bits16Sps15:  {bits: 0b0000_1000, res: 16, max: 32767, min: -32768, sps: 15, settle: 57 * time.Millisecond, lsbUV: 62.5},
}
