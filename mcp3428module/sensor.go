package mcp3428module

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/resource"
)

var Model = resource.DefaultModelFamily.WithModel("mcp3428")

// Bus transports selectable in config.
const (
	transportLinux  = "linux"
	transportPeriph = "periph"
	transportSMBus  = "smbus"
)

// Config is used for converting config attributes.
type Config struct {
	Board         string `json:"board,omitempty"`
	I2CBus        string `json:"i2c_bus"`
	I2cAddr       int    `json:"i2c_addr,omitempty"`
	Transport     string `json:"transport,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Resolution    int    `json:"resolution,omitempty"`
	Gain          int    `json:"gain,omitempty"`
	Channels      []int  `json:"channels,omitempty"`
	PollTimeoutMs int    `json:"poll_timeout_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) ([]string, error) {
	var deps []string
	if len(config.I2CBus) == 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "i2c_bus")
	}
	switch config.Transport {
	case "", transportLinux:
		if len(config.Board) == 0 {
			return nil, utils.NewConfigValidationFieldRequiredError(path, "board")
		}
		deps = append(deps, config.Board)
	case transportPeriph:
	case transportSMBus:
		if _, err := smbusNumber(config.I2CBus); err != nil {
			return nil, utils.NewConfigValidationError(path, err)
		}
	default:
		return nil, utils.NewConfigValidationError(path,
			fmt.Errorf("%q is not a valid transport. Choose from linux, periph, smbus", config.Transport))
	}
	mode, err := ParseMode(config.Mode)
	if err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	if _, err := ParseResolution(config.Resolution); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	if _, err := ParseGain(config.Gain); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	for _, n := range config.Channels {
		if _, err := ParseChannel(n); err != nil {
			return nil, utils.NewConfigValidationError(path, err)
		}
	}
	if mode == Continuous && len(config.Channels) > 1 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("continuous mode samples a single channel"))
	}
	if config.PollTimeoutMs < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("poll_timeout_ms cannot be negative"))
	}
	return deps, nil
}

func init() {
	resource.RegisterComponent(
		sensor.API,
		Model,
		resource.Registration[sensor.Sensor, *Config]{
			Constructor: func(
				ctx context.Context,
				deps resource.Dependencies,
				conf resource.Config,
				logger golog.Logger,
			) (sensor.Sensor, error) {
				newConf, err := resource.NativeConfig[*Config](conf)
				if err != nil {
					return nil, err
				}
				return newSensor(ctx, deps, conf.ResourceName(), newConf, logger)
			},
		})
}

// openBus returns the transport named by conf and, when the transport owns a
// file descriptor, the closer releasing it.
var openBus = func(deps resource.Dependencies, conf *Config) (Bus, io.Closer, error) {
	switch conf.Transport {
	case transportPeriph:
		b, err := OpenPeriphBus(conf.I2CBus)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case transportSMBus:
		n, err := smbusNumber(conf.I2CBus)
		if err != nil {
			return nil, nil, err
		}
		b, err := OpenSMBus(n)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		i2cbus, err := boardI2C(deps, conf.Board, conf.I2CBus)
		if err != nil {
			return nil, nil, err
		}
		return NewBoardBus(i2cbus), nil, nil
	}
}

// boardI2C looks up a named bus on a local board dependency.
func boardI2C(deps resource.Dependencies, boardName, busName string) (board.I2C, error) {
	b, err := board.FromDependencies(deps, boardName)
	if err != nil {
		return nil, fmt.Errorf("mcp3428 init: failed to find board: %w", err)
	}
	localB, ok := b.(board.LocalBoard)
	if !ok {
		return nil, fmt.Errorf("board %s is not local", boardName)
	}
	i2cbus, ok := localB.I2CByName(busName)
	if !ok {
		return nil, fmt.Errorf("mcp3428 init: failed to find i2c bus %s", busName)
	}
	return i2cbus, nil
}

// smbusNumber accepts "1", "i2c-1" or "/dev/i2c-1".
func smbusNumber(name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(name, "/dev/"), "i2c-"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not an i2c bus number", name)
	}
	return n, nil
}

func newSensor(
	ctx context.Context,
	deps resource.Dependencies,
	name resource.Name,
	attr *Config,
	logger golog.Logger,
) (sensor.Sensor, error) {
	bus, closer, err := openBus(deps, attr)
	if err != nil {
		return nil, err
	}
	s, err := newMCP3428(ctx, name, attr, bus, closer, logger)
	if err != nil {
		if closer != nil {
			err = multierr.Combine(err, closer.Close())
		}
		return nil, err
	}
	return s, nil
}

func newMCP3428(
	ctx context.Context,
	name resource.Name,
	attr *Config,
	bus Bus,
	closer io.Closer,
	logger golog.Logger,
) (*mcp3428, error) {
	addr := attr.I2cAddr
	if addr == 0 {
		addr = defaultI2Caddr
		logger.Warnf("using i2c address : 0x%s", hex.EncodeToString([]byte{byte(addr)}))
	}

	// Validate has already run; these only fail on a config built by hand.
	mode, err := ParseMode(attr.Mode)
	if err != nil {
		return nil, err
	}
	res, err := ParseResolution(attr.Resolution)
	if err != nil {
		return nil, err
	}
	gain, err := ParseGain(attr.Gain)
	if err != nil {
		return nil, err
	}
	channels := []Channel{Channel1}
	if len(attr.Channels) > 0 {
		channels = channels[:0]
		for _, n := range attr.Channels {
			ch, err := ParseChannel(n)
			if err != nil {
				return nil, err
			}
			channels = append(channels, ch)
		}
	}

	s := &mcp3428{
		Named:       name.AsNamed(),
		logger:      logger,
		closer:      closer,
		channels:    channels,
		pollTimeout: time.Duration(attr.PollTimeoutMs) * time.Millisecond,
		dev: New(bus, byte(addr), mode).
			WithResolution(res).
			WithGain(gain).
			WithChannel(channels[0]),
	}

	if mode == Continuous {
		if err := s.writeConfig(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// mcp3428 is an i2c sensor device that reports the voltage on one or more channels.
type mcp3428 struct {
	resource.Named
	resource.AlwaysRebuild
	logger golog.Logger

	// mu serializes bus access; the device holds one configuration at a time.
	mu          sync.Mutex
	dev         *Device
	closer      io.Closer
	channels    []Channel
	pollTimeout time.Duration
}

// Readings returns the voltage in mV of every configured channel. A saturated
// channel is reported as over_range or under_range instead of failing the call.
// In one-shot mode the channel chosen with set_channel is restored afterwards.
func (s *mcp3428) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings := map[string]interface{}{}
	if s.dev.Mode() == Continuous {
		mv, err := s.measure(ctx)
		if err := report(readings, s.dev.Channel(), mv, err); err != nil {
			return nil, err
		}
		return readings, nil
	}
	active := s.dev.Channel()
	defer s.dev.SetChannel(active)
	for _, ch := range s.channels {
		s.dev.SetChannel(ch)
		mv, err := s.measure(ctx)
		if err := report(readings, ch, mv, err); err != nil {
			return nil, err
		}
	}
	return readings, nil
}

// DoCommand accepts set_channel, set_mode, set_resolution and set_gain, which
// are all validated before any is applied, plus write_config, read and control_byte.
func (s *mcp3428) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := parseSettings(cmd)
	if err != nil {
		return nil, err
	}
	changed := settings.apply(s.dev)
	handled := false

	// A continuous device keeps converting with the old settings until they are written.
	_, write := cmd["write_config"]
	if write || (changed && s.dev.Mode() == Continuous) {
		if err := s.writeConfig(ctx); err != nil {
			return nil, err
		}
		handled = true
	}

	resp := map[string]interface{}{}
	if _, ok := cmd["read"]; ok {
		mv, err := s.measure(ctx)
		if err := report(resp, s.dev.Channel(), mv, err); err != nil {
			return nil, err
		}
		handled = true
	}
	if _, ok := cmd["control_byte"]; ok {
		resp["control_byte"] = int(s.dev.ControlByte())
		handled = true
	}
	if !handled && !changed {
		return nil, fmt.Errorf("unknown command %v", keys(cmd))
	}
	return resp, nil
}

// settingsCommand holds the set_* arguments of one DoCommand call. Every
// argument is parsed before any is applied, so a rejected command changes nothing.
type settingsCommand struct {
	channel    *Channel
	mode       *Mode
	resolution *Resolution
	gain       *Gain
}

func parseSettings(cmd map[string]interface{}) (settingsCommand, error) {
	var sc settingsCommand
	if val, ok := cmd["set_channel"]; ok {
		n, err := intArg("set_channel", val)
		if err != nil {
			return sc, err
		}
		ch, err := ParseChannel(n)
		if err != nil {
			return sc, err
		}
		sc.channel = &ch
	}
	if val, ok := cmd["set_mode"]; ok {
		str, ok := val.(string)
		if !ok {
			return sc, fmt.Errorf("set_mode expects a string, got %T", val)
		}
		mode, err := ParseMode(str)
		if err != nil {
			return sc, err
		}
		sc.mode = &mode
	}
	if val, ok := cmd["set_resolution"]; ok {
		n, err := intArg("set_resolution", val)
		if err != nil {
			return sc, err
		}
		res, err := ParseResolution(n)
		if err != nil {
			return sc, err
		}
		sc.resolution = &res
	}
	if val, ok := cmd["set_gain"]; ok {
		n, err := intArg("set_gain", val)
		if err != nil {
			return sc, err
		}
		gain, err := ParseGain(n)
		if err != nil {
			return sc, err
		}
		sc.gain = &gain
	}
	return sc, nil
}

// apply reports whether any setting was given.
func (sc settingsCommand) apply(d *Device) bool {
	changed := false
	if sc.channel != nil {
		d.SetChannel(*sc.channel)
		changed = true
	}
	if sc.mode != nil {
		d.SetMode(*sc.mode)
		changed = true
	}
	if sc.resolution != nil {
		d.SetResolution(*sc.resolution)
		changed = true
	}
	if sc.gain != nil {
		d.SetGain(*sc.gain)
		changed = true
	}
	return changed
}

// Close releases the bus when this sensor opened it.
func (s *mcp3428) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *mcp3428) writeConfig(ctx context.Context) error {
	ctx, cancel := s.withPollTimeout(ctx)
	defer cancel()
	if err := s.dev.WriteConfig(ctx); err != nil {
		return err
	}
	s.logger.Infof("wrote configuration 0x%02x (%v, %v, %v, %v)",
		s.dev.ControlByte(), s.dev.Mode(), s.dev.Channel(), s.dev.Resolution(), s.dev.Gain())
	return nil
}

// measure takes one measurement on the active channel in the active mode.
func (s *mcp3428) measure(ctx context.Context) (int32, error) {
	ctx, cancel := s.withPollTimeout(ctx)
	defer cancel()

	var mv int32
	var err error
	if s.dev.Mode() == Continuous {
		mv, err = s.dev.GetMeasurement(ctx)
	} else {
		mv, err = s.dev.OneShotMeasurement(ctx)
	}
	s.logger.Debugw("conversion", "channel", s.dev.Channel().Number(),
		"control_byte", s.dev.ControlByte(), "mv", mv, "error", err)
	return mv, err
}

func (s *mcp3428) withPollTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.pollTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.pollTimeout)
}

func report(out map[string]interface{}, ch Channel, mv int32, err error) error {
	switch {
	case errors.Is(err, ErrVoltageTooHigh):
		out[ch.String()+"_error"] = "over_range"
	case errors.Is(err, ErrVoltageTooLow):
		out[ch.String()+"_error"] = "under_range"
	case err != nil:
		return fmt.Errorf("%v: %w", ch, err)
	default:
		out[ch.String()+"_mv"] = int(mv)
	}
	return nil
}

// intArg accepts the float64 that JSON numbers decode to as well as plain ints.
func intArg(name string, val interface{}) (int, error) {
	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s expects a whole number, got %v", name, v)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s expects a number, got %T", name, val)
	}
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
