package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/winedispenser/detector"
	"github.com/amp-labs/winedispenser/envutil"
	"github.com/amp-labs/winedispenser/startup"
)

// Environment variables read by LoadConfig.
const (
	EnvPollInterval   = "DISPENSER_POLL_INTERVAL"
	EnvSelfTestBlinks = "DISPENSER_SELFTEST_BLINKS"
	EnvSelfTestPeriod = "DISPENSER_SELFTEST_PERIOD"
	EnvBootAlarm      = "DISPENSER_BOOT_ALARM"
)

// ErrInvalidConfig is returned when a Config field is out of range.
var ErrInvalidConfig = errors.New("invalid controller config")

// Config holds the timing knobs of the control loop.
type Config struct {
	PollInterval   time.Duration
	SelfTestBlinks int
	SelfTestPeriod time.Duration
	BootAlarm      bool
}

// DefaultConfig reproduces the firmware timings.
func DefaultConfig() Config {
	return Config{
		PollInterval:   detector.DefaultInterval,
		SelfTestBlinks: startup.DefaultBlinks,
		SelfTestPeriod: startup.DefaultPeriod,
	}
}

// LoadConfig reads the config from the environment. Unset variables keep the
// defaults of DefaultConfig.
func LoadConfig() (Config, error) {
	dfl := DefaultConfig()

	poll, err := envutil.Duration(EnvPollInterval,
		envutil.Default(dfl.PollInterval),
		envutil.Validate(envutil.Positive[time.Duration])).Value()
	if err != nil {
		return Config{}, err
	}

	blinks, err := envutil.Int(EnvSelfTestBlinks,
		envutil.Default(dfl.SelfTestBlinks),
		envutil.Validate(nonNegative)).Value()
	if err != nil {
		return Config{}, err
	}

	period, err := envutil.Duration(EnvSelfTestPeriod,
		envutil.Default(dfl.SelfTestPeriod),
		envutil.Validate(envutil.Positive[time.Duration])).Value()
	if err != nil {
		return Config{}, err
	}

	bootAlarm, err := envutil.Bool(EnvBootAlarm, envutil.Default(dfl.BootAlarm)).Value()
	if err != nil {
		return Config{}, err
	}

	return Config{
		PollInterval:   poll,
		SelfTestBlinks: blinks,
		SelfTestPeriod: period,
		BootAlarm:      bootAlarm,
	}, nil
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval %v", ErrInvalidConfig, c.PollInterval)
	case c.SelfTestBlinks < 0:
		return fmt.Errorf("%w: self-test blinks %d", ErrInvalidConfig, c.SelfTestBlinks)
	case c.SelfTestPeriod <= 0:
		return fmt.Errorf("%w: self-test period %v", ErrInvalidConfig, c.SelfTestPeriod)
	}

	return nil
}

func nonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConfig, v)
	}

	return nil
}
