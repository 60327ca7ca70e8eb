// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package controller

import (
	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/ve"
)

// ToggleGaugeStatus flips a gauge between active and inactive. Manager only.
func (r *Registry) ToggleGaugeStatus(caller, addr ve.Address) (bool, error) {
	if err := r.deps.ACL.Require(access.Manager, caller); err != nil {
		return false, err
	}
	info, err := r.info(addr)
	if err != nil {
		return false, err
	}
	info.Active = !info.Active
	if err := r.gauges.Set(addr, info); err != nil {
		return false, err
	}
	logger.Debug("gauge status toggled", "gauge", addr, "active", info.Active)
	return info.Active, nil
}

// EmergencyShutdown deactivates a gauge. Only ToggleGaugeStatus reactivates it.
func (r *Registry) EmergencyShutdown(caller, addr ve.Address) error {
	if err := r.deps.ACL.Require(access.Emergency, caller); err != nil {
		return err
	}
	info, err := r.info(addr)
	if err != nil {
		return err
	}
	if !info.Active {
		return ErrGaugeNotActive
	}
	info.Active = false
	logger.Warn("gauge shut down", "gauge", addr, "caller", caller)
	return r.gauges.Set(addr, info)
}

// EmergencyRevoke pauses voting, registration and distribution.
func (r *Registry) EmergencyRevoke(caller ve.Address) error {
	if err := r.deps.ACL.Require(access.Emergency, caller); err != nil {
		return err
	}
	if err := r.whenNotPaused(); err != nil {
		return err
	}
	r.paused.Set(true)
	logger.Warn("registry paused", "caller", caller)
	return nil
}

// Unpause lifts an emergency revoke. Admin only.
func (r *Registry) Unpause(caller ve.Address) error {
	if err := r.deps.ACL.Require(access.Admin, caller); err != nil {
		return err
	}
	paused, err := r.paused.Get()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	r.paused.Set(false)
	logger.Info("registry unpaused", "caller", caller)
	return nil
}

// SetTypeWeight sets the share of kind's emission paid out, in basis points. Manager only.
func (r *Registry) SetTypeWeight(caller ve.Address, kind gauge.Kind, bps uint64) error {
	if err := r.deps.ACL.Require(access.Manager, caller); err != nil {
		return err
	}
	if !kind.Valid() {
		return gauge.ErrInvalidGaugeType
	}
	if bps > ve.MaxTypeWeight {
		return ErrInvalidWeight
	}
	logger.Debug("type weight set", "kind", kind, "bps", bps)
	return r.typeWeights.Set(kind, &typeWeight{Bps: bps})
}
