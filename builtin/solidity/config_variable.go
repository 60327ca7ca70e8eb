// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

// ConfigVariable is a protocol parameter with a default value that can be overridden in storage.
type ConfigVariable struct {
	slot         ve.Bytes32
	name         string
	defaultValue uint64
}

func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		slot:         ve.NameToSlot(name),
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() ve.Bytes32 {
	return c.slot
}

func (c *ConfigVariable) Default() uint64 {
	return c.defaultValue
}

// Get returns the stored override, or the default if none is set.
func (c *ConfigVariable) Get(ctx *Context) (uint64, error) {
	num, err := NewUint256(ctx, c.slot).Get()
	if err != nil {
		return 0, err
	}
	if num.IsZero() {
		return c.defaultValue, nil
	}
	return num.Uint64(), nil
}

// Override stores a new value. Zero restores the default.
func (c *ConfigVariable) Override(ctx *Context, value uint64) {
	var storage ve.Bytes32
	for i := 0; i < 8; i++ {
		storage[31-i] = byte(value >> (8 * i))
	}
	ctx.state.SetStorage(ctx.address, c.slot, storage)
	log.Debug("config value overridden", "slot", c.Name(), "value", value)
}
