package mcp3428module

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/rdk/components/board"
	"go.viam.com/test"
	"periph.io/x/conn/v3/i2c"
)

type fakeHandle struct {
	board.I2CHandle
	i2c      *fakeI2C
	closeErr error
}

func (h *fakeHandle) Write(ctx context.Context, tx []byte) error {
	h.i2c.written = append(h.i2c.written, tx...)
	return nil
}

func (h *fakeHandle) Read(ctx context.Context, count int) ([]byte, error) {
	return make([]byte, count), nil
}

func (h *fakeHandle) Close() error {
	h.i2c.open--
	return h.closeErr
}

type fakeI2C struct {
	addrs    []byte
	written  []byte
	open     int
	closeErr error
}

func (f *fakeI2C) OpenHandle(addr byte) (board.I2CHandle, error) {
	f.addrs = append(f.addrs, addr)
	f.open++
	return &fakeHandle{i2c: f, closeErr: f.closeErr}, nil
}

func TestBoardBus(t *testing.T) {
	raw := &fakeI2C{}
	bus := NewBoardBus(raw)

	test.That(t, bus.Write(context.Background(), 0x68, []byte{0x90}), test.ShouldBeNil)
	rx, err := bus.Read(context.Background(), 0x69, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(rx), test.ShouldEqual, 3)
	test.That(t, raw.addrs, test.ShouldResemble, []byte{0x68, 0x69})
	test.That(t, raw.written, test.ShouldResemble, []byte{0x90})
	test.That(t, raw.open, test.ShouldEqual, 0)

	raw.closeErr = errors.New("close failed")
	err = bus.Write(context.Background(), 0x68, []byte{0x90})
	test.That(t, err, test.ShouldBeError, raw.closeErr)
	test.That(t, raw.open, test.ShouldEqual, 0)
}

type fakePeriph struct {
	i2c.Bus
	addr uint16
	w    []byte
	r    []byte
}

func (f *fakePeriph) Tx(addr uint16, w, r []byte) error {
	f.addr = addr
	f.w = append([]byte(nil), w...)
	copy(r, f.r)
	return nil
}

func TestPeriphBus(t *testing.T) {
	raw := &fakePeriph{r: []byte{0x04, 0x00, 0x10}}
	bus := NewPeriphBus(raw)

	test.That(t, bus.Write(context.Background(), 0x6A, []byte{0x10}), test.ShouldBeNil)
	test.That(t, raw.addr, test.ShouldEqual, uint16(0x6A))
	test.That(t, raw.w, test.ShouldResemble, []byte{0x10})

	rx, err := bus.Read(context.Background(), 0x6A, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rx, test.ShouldResemble, []byte{0x04, 0x00, 0x10})

	// not opened by OpenPeriphBus, nothing to close
	test.That(t, bus.Close(), test.ShouldBeNil)

	dev := New(bus, 0x6A, Continuous).WithSleep(func(context.Context, time.Duration) bool { return true })
	test.That(t, dev.WriteConfig(context.Background()), test.ShouldBeNil)
	mv, err := dev.GetMeasurement(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mv, test.ShouldEqual, int32(1024))
}
