// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/veboost/builtin/boost"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/escrow/decay"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/ve"
)

// Config is the deployment configuration of the engine. Amounts are whole
// tokens, durations are seconds.
type Config struct {
	Admin           ve.Address `yaml:"admin"`
	MinLockDuration uint64     `yaml:"min_lock_duration"`
	MaxLockDuration uint64     `yaml:"max_lock_duration"`
	MaxLockAmount   uint64     `yaml:"max_lock_amount"`
	MaxTotalLocked  uint64     `yaml:"max_total_locked"`
	MinBoost        uint64     `yaml:"min_boost"`
	MaxBoost        uint64     `yaml:"max_boost"`
	BoostWindow     uint64     `yaml:"boost_window"`
	ClaimInterval   uint64     `yaml:"claim_interval"`
	EmergencyDelay  uint64     `yaml:"emergency_delay"`
	RWA             KindConfig `yaml:"rwa"`
	RAAC            KindConfig `yaml:"raac"`
}

// KindConfig configures the gauges of one kind.
type KindConfig struct {
	AnnualEmission uint64 `yaml:"annual_emission"`
	Period         uint64 `yaml:"period"`
}

// DefaultConfig returns the reference deployment values.
func DefaultConfig() Config {
	return Config{
		MinLockDuration: ve.MinLockDuration,
		MaxLockDuration: ve.MaxLockDuration,
		MaxLockAmount:   10_000_000,
		MaxTotalLocked:  1_000_000_000,
		MinBoost:        ve.MinBoost,
		MaxBoost:        ve.MaxBoost,
		BoostWindow:     ve.BoostWindow,
		ClaimInterval:   ve.MinClaimInterval,
		EmergencyDelay:  ve.EmergencyDelay,
		RWA:             KindConfig{AnnualEmission: 1_200_000, Period: ve.RWAPeriod},
		RAAC:            KindConfig{AnnualEmission: 5_200_000, Period: ve.RAACPeriod},
	}
}

// ReadConfig reads a YAML config file over the defaults without validating it.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Admin.IsZero() {
		return errors.New("admin address required")
	}
	if c.MinLockDuration == 0 || c.MaxLockDuration < c.MinLockDuration {
		return errors.Errorf("invalid lock durations %d..%d", c.MinLockDuration, c.MaxLockDuration)
	}
	if c.MaxLockAmount == 0 || c.MaxTotalLocked < c.MaxLockAmount {
		return errors.Errorf("invalid lock caps %d/%d", c.MaxLockAmount, c.MaxTotalLocked)
	}
	if err := c.boostParams().Validate(); err != nil {
		return errors.Wrap(err, "boost")
	}
	for _, kind := range gauge.Kinds {
		if c.kind(kind).Period == 0 {
			return errors.Errorf("%v: zero period", kind)
		}
	}
	return nil
}

func (c Config) kind(k gauge.Kind) KindConfig {
	if k == gauge.RWA {
		return c.RWA
	}
	return c.RAAC
}

func (c Config) escrowConfig() escrow.Config {
	return escrow.Config{
		Bounds:         decay.Bounds{MinDuration: c.MinLockDuration, MaxDuration: c.MaxLockDuration},
		MaxLockAmount:  ve.Ether(c.MaxLockAmount),
		MaxTotalLocked: ve.Ether(c.MaxTotalLocked),
		EmergencyDelay: c.EmergencyDelay,
	}
}

func (c Config) boostParams() boost.Params {
	return boost.Params{MinBoost: c.MinBoost, MaxBoost: c.MaxBoost, Window: c.BoostWindow}
}

func (c Config) emissions() map[gauge.Kind]*uint256.Int {
	out := make(map[gauge.Kind]*uint256.Int, len(gauge.Kinds))
	for _, k := range gauge.Kinds {
		out[k] = ve.Ether(c.kind(k).AnnualEmission)
	}
	return out
}
