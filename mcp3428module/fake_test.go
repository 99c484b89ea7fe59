package mcp3428module

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// fakeBus replays scripted read responses and records every transaction,
// together with the sleeps of the device it is attached to, in one log.
type fakeBus struct {
	reads    [][]byte
	readErr  error
	writeErr error
	log      []string
}

func (b *fakeBus) Write(_ context.Context, addr byte, tx []byte) error {
	b.log = append(b.log, fmt.Sprintf("write 0x%02x %08b", addr, tx[0]))
	return b.writeErr
}

func (b *fakeBus) Read(_ context.Context, addr byte, count int) ([]byte, error) {
	b.log = append(b.log, fmt.Sprintf("read 0x%02x %d", addr, count))
	if b.readErr != nil {
		return nil, b.readErr
	}
	if len(b.reads) == 0 {
		return nil, errors.New("no scripted response")
	}
	rx := b.reads[0]
	b.reads = b.reads[1:]
	return rx, nil
}

// sleep records the duration and honours ctx like utils.SelectContextOrWait,
// without actually waiting.
func (b *fakeBus) sleep(ctx context.Context, d time.Duration) bool {
	b.log = append(b.log, "sleep "+d.String())
	return ctx.Err() == nil
}

func sample(raw int16, status byte) []byte {
	return []byte{byte(uint16(raw) >> 8), byte(raw), status}
}

func newFakeDevice(mode Mode, reads ...[]byte) (*Device, *fakeBus) {
	bus := &fakeBus{reads: reads}
	return New(bus, defaultI2Caddr, mode).WithSleep(bus.sleep), bus
}
