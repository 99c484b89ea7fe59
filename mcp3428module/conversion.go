package mcp3428module

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

// OneShotMeasurement writes the control byte, waits one conversion and
// returns the result in mV. In one-shot mode the control byte carries the
// start bit; in continuous mode it rewrites the running configuration.
func (d *Device) OneShotMeasurement(ctx context.Context) (int32, error) {
	cmd := d.ControlByte()
	res := d.resolution

	if err := d.bus.Write(ctx, d.addr, []byte{cmd}); err != nil {
		return 0, busError("write", err)
	}
	if err := d.wait(ctx, res.spec().settle+oneShotGuard); err != nil {
		return 0, err
	}
	return d.pollMeasurement(ctx, res)
}

// WriteConfig writes the current settings and waits until the device reports
// a first result for them. In continuous mode it must be called before
// GetMeasurement, and again after any settings change.
func (d *Device) WriteConfig(ctx context.Context) error {
	cmd := d.ControlByte()
	mode := d.mode
	d.configured = false

	if err := d.bus.Write(ctx, d.addr, []byte{cmd}); err != nil {
		return busError("write", err)
	}
	if err := d.wait(ctx, d.resolution.spec().settle); err != nil {
		return err
	}
	for {
		_, status, err := d.readSample(ctx)
		if err != nil {
			return err
		}
		if status.IsReady() {
			break
		}
		if err := d.wait(ctx, pollInterval); err != nil {
			return err
		}
	}
	d.configured = mode == Continuous
	return nil
}

// GetMeasurement polls until the device reports a ready result and returns
// it in mV.
//
// In continuous mode the device converts on its own schedule. Reading faster
// than the sample rate returns the previous result again: the ready bit
// cannot tell a stale value from a fresh one.
func (d *Device) GetMeasurement(ctx context.Context) (int32, error) {
	if d.mode == Continuous && !d.configured {
		return 0, ErrNotInitialized
	}
	return d.pollMeasurement(ctx, d.resolution)
}

// pollMeasurement reads until the status is ready. Saturation is a final
// answer and is not polled again. The loop only ends early on a bus error or
// when ctx is done.
func (d *Device) pollMeasurement(ctx context.Context, res Resolution) (int32, error) {
	for {
		raw, status, err := d.readSample(ctx)
		if err != nil {
			return 0, err
		}
		if status.IsReady() {
			return res.Millivolts(raw)
		}
		if err := d.wait(ctx, pollInterval); err != nil {
			return 0, err
		}
	}
}

// readSample reads the two sample bytes (big endian, two's complement) and the status byte.
func (d *Device) readSample(ctx context.Context) (int16, Status, error) {
	rx, err := d.bus.Read(ctx, d.addr, readLen)
	if err != nil {
		return 0, 0, busError("read", err)
	}
	if len(rx) < readLen {
		return 0, 0, busError("read", fmt.Errorf("short read: got %d of %d bytes", len(rx), readLen))
	}
	return int16(binary.BigEndian.Uint16(rx[:2])), DecodeStatus(rx[2]), nil
}

func (d *Device) wait(ctx context.Context, dur time.Duration) error {
	if !d.sleep(ctx, dur) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return ErrTimeout
	}
	return nil
}
