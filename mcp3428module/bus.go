package mcp3428module

import (
	"context"
	"fmt"
	"time"

	"github.com/go-daq/smbus"
	"go.uber.org/multierr"
	"go.viam.com/rdk/components/board"
	"go.viam.com/utils"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus is the two-wire transport the driver talks through. Addresses are 7 bit.
type Bus interface {
	Write(ctx context.Context, addr byte, tx []byte) error
	Read(ctx context.Context, addr byte, count int) ([]byte, error)
}

// SleepFunc suspends the caller for d. It returns false if ctx ended first.
type SleepFunc func(ctx context.Context, d time.Duration) bool

// defaultSleep waits on a timer but gives up early when ctx is done.
var defaultSleep SleepFunc = utils.SelectContextOrWait

// boardBus opens an rdk handle for every transaction, like the board drivers do.
type boardBus struct {
	bus board.I2C
}

// NewBoardBus adapts an rdk board I2C bus.
func NewBoardBus(bus board.I2C) Bus {
	return &boardBus{bus: bus}
}

func (b *boardBus) Write(ctx context.Context, addr byte, tx []byte) (err error) {
	handle, err := b.bus.OpenHandle(addr)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()
	return handle.Write(ctx, tx)
}

func (b *boardBus) Read(ctx context.Context, addr byte, count int) (rx []byte, err error) {
	handle, err := b.bus.OpenHandle(addr)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, handle.Close())
	}()
	return handle.Read(ctx, count)
}

// PeriphBus is a Bus backed by a periph.io i2c bus.
type PeriphBus struct {
	bus i2c.Bus
}

// NewPeriphBus adapts an already opened periph.io bus.
func NewPeriphBus(bus i2c.Bus) *PeriphBus {
	return &PeriphBus{bus: bus}
}

// OpenPeriphBus initializes the periph host drivers and opens the named bus.
// An empty name opens the first bus found.
func OpenPeriphBus(name string) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", name, err)
	}
	return &PeriphBus{bus: bc}, nil
}

func (p *PeriphBus) Write(_ context.Context, addr byte, tx []byte) error {
	return p.bus.Tx(uint16(addr), tx, nil)
}

func (p *PeriphBus) Read(_ context.Context, addr byte, count int) ([]byte, error) {
	rx := make([]byte, count)
	if err := p.bus.Tx(uint16(addr), nil, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// Close closes the bus if it was opened by OpenPeriphBus.
func (p *PeriphBus) Close() error {
	if c, ok := p.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}

// SMBus is a Bus backed by a /dev/i2c-N character device.
type SMBus struct {
	conn *smbus.Conn
}

// OpenSMBus opens /dev/i2c-<bus>.
func OpenSMBus(bus int) (*SMBus, error) {
	conn, err := smbus.OpenFile(bus)
	if err != nil {
		return nil, err
	}
	return &SMBus{conn: conn}, nil
}

func (s *SMBus) Write(_ context.Context, addr byte, tx []byte) error {
	if err := s.conn.SetAddr(addr); err != nil {
		return err
	}
	n, err := s.conn.Write(tx)
	if err != nil {
		return err
	}
	if n != len(tx) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(tx))
	}
	return nil
}

func (s *SMBus) Read(_ context.Context, addr byte, count int) ([]byte, error) {
	if err := s.conn.SetAddr(addr); err != nil {
		return nil, err
	}
	rx := make([]byte, count)
	n, err := s.conn.Read(rx)
	if err != nil {
		return nil, err
	}
	return rx[:n], nil
}

// Close closes the character device.
func (s *SMBus) Close() error {
	return s.conn.Close()
}
