package mcp3428module

import (
	"testing"

	"go.viam.com/test"
)

func TestStatusIsReady(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		test.That(t, DecodeStatus(b).IsReady(), test.ShouldEqual, b&0x80 == 0)
	}
}

func TestStatusEcho(t *testing.T) {
	dev := New(&fakeBus{}, defaultI2Caddr, Continuous).
		WithChannel(Channel2).
		WithResolution(Bits14Sps60).
		WithGain(Gain8)

	s := DecodeStatus(0b0011_0111)
	test.That(t, s.IsReady(), test.ShouldBeTrue)
	test.That(t, s.Channel(), test.ShouldEqual, Channel2)
	test.That(t, s.Mode(), test.ShouldEqual, Continuous)
	test.That(t, s.Resolution(), test.ShouldEqual, Bits14Sps60)
	test.That(t, s.Gain(), test.ShouldEqual, Gain8)
	test.That(t, s.Matches(dev), test.ShouldBeTrue)

	// the ready bit does not take part in the comparison
	test.That(t, DecodeStatus(0b1011_0111).Matches(dev), test.ShouldBeTrue)

	dev.SetGain(Gain1)
	test.That(t, s.Matches(dev), test.ShouldBeFalse)
}
