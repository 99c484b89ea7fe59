package mcp3428module

import (
	"testing"

	"go.viam.com/test"
)

func TestCalculateVoltage(t *testing.T) {
	dev := New(&fakeBus{}, defaultI2Caddr, OneShot)

	mv, err := dev.CalculateVoltage(1024)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mv, test.ShouldEqual, int32(1024))

	mv, err = dev.CalculateVoltage(-1024)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mv, test.ShouldEqual, int32(-1024))

	mv, err = dev.CalculateVoltage(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mv, test.ShouldEqual, int32(0))

	_, err = dev.CalculateVoltage(2047)
	test.That(t, err, test.ShouldBeError, ErrVoltageTooHigh)
	_, err = dev.CalculateVoltage(-2048)
	test.That(t, err, test.ShouldBeError, ErrVoltageTooLow)
}

func TestCalculateVoltageOnlyExtremesSaturate(t *testing.T) {
	for _, r := range []Resolution{Bits12Sps240, Bits14Sps60, Bits16Sps15} {
		for raw := int(r.Min()); raw <= int(r.Max()); raw++ {
			mv, err := r.Millivolts(int16(raw))
			switch int16(raw) {
			case r.Max():
				test.That(t, err, test.ShouldBeError, ErrVoltageTooHigh)
			case r.Min():
				test.That(t, err, test.ShouldBeError, ErrVoltageTooLow)
			default:
				test.That(t, err, test.ShouldBeNil)
				test.That(t, mv, test.ShouldBeBetweenOrEqual, -2048, 2048)
				if int16(-raw) == r.Max() {
					continue
				}
				neg, err := r.Millivolts(int16(-raw))
				test.That(t, err, test.ShouldBeNil)
				test.That(t, neg, test.ShouldEqual, -mv)
			}
		}
	}
}

func TestCalculateVoltageScalesWithResolution(t *testing.T) {
	for _, tc := range []struct {
		res  Resolution
		raw  int16
		want int32
	}{
		{Bits12Sps240, 2000, 2000},
		{Bits14Sps60, 1024, 256},
		{Bits14Sps60, 8000, 2000},
		{Bits16Sps15, 16000, 1000},
		{Bits16Sps15, 32766, 2047},
		// truncation toward zero
		{Bits16Sps15, 16, 1},
		{Bits16Sps15, -16, -1},
		{Bits16Sps15, 15, 0},
		{Bits16Sps15, -15, 0},
	} {
		mv, err := tc.res.Millivolts(tc.raw)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mv, test.ShouldEqual, tc.want)
	}
}
