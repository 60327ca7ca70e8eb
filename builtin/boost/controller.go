// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package boost

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/period"
	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

var (
	ErrPoolAlreadySupported = reverts.New("pool already supported")

	slotPools   = ve.NameToSlot("boost-pools")
	slotWorking = ve.NameToSlot("boost-working-balances")
	slotWindow  = ve.NameToSlot("boost-window")
	keyWindow   = ve.NameToSlot("total-voting-power")

	logger = log.WithContext("pkg", "boost")
)

// VotingPower is the voting power ledger boosts are computed from.
type VotingPower interface {
	GetVotingPower(account ve.Address, now uint64) (*uint256.Int, error)
	GetTotalVotingPower() (*uint256.Int, error)
}

// Controller applies boosts for supported pools and keeps a windowed
// time-weighted average of the total voting power.
type Controller struct {
	params  Params
	acl     *access.Control
	power   VotingPower
	pools   *solidity.Mapping[ve.Address, bool]
	working *solidity.Mapping[ve.Bytes32, *uint256.Int]
	window  *solidity.Mapping[ve.Bytes32, *period.Period]
}

func NewController(sctx *solidity.Context, params Params, power VotingPower, acl *access.Control) *Controller {
	return &Controller{
		params:  params,
		acl:     acl,
		power:   power,
		pools:   solidity.NewMapping[ve.Address, bool](sctx, slotPools),
		working: solidity.NewMapping[ve.Bytes32, *uint256.Int](sctx, slotWorking),
		window:  solidity.NewMapping[ve.Bytes32, *period.Period](sctx, slotWindow),
	}
}

func workingKey(account, pool ve.Address) ve.Bytes32 {
	return ve.Blake2b(account.Bytes(), pool.Bytes())
}

func (c *Controller) Params() Params {
	return c.params
}

func (c *Controller) requireManagerOrRegistry(caller ve.Address) error {
	ok, err := c.acl.HasRole(access.Registry, caller)
	if err != nil || ok {
		return err
	}
	return c.acl.Require(access.Manager, caller)
}

// AddSupportedPool enables boosting for pool. Manager or registry only.
func (c *Controller) AddSupportedPool(caller, pool ve.Address) error {
	if err := c.requireManagerOrRegistry(caller); err != nil {
		return err
	}
	ok, err := c.pools.Get(pool)
	if err != nil {
		return err
	}
	if ok {
		return ErrPoolAlreadySupported
	}
	logger.Debug("pool supported", "pool", pool)
	return c.pools.Set(pool, true)
}

// RemoveSupportedPool disables boosting for pool. Manager or registry only.
func (c *Controller) RemoveSupportedPool(caller, pool ve.Address) error {
	if err := c.requireManagerOrRegistry(caller); err != nil {
		return err
	}
	ok, err := c.pools.Get(pool)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPoolNotSupported
	}
	c.pools.Delete(pool)
	logger.Debug("pool removed", "pool", pool)
	return nil
}

func (c *Controller) IsSupported(pool ve.Address) (bool, error) {
	return c.pools.Get(pool)
}

// Checkpoint folds the current total voting power into the window, rolling
// the window over when it elapsed.
func (c *Controller) Checkpoint(now uint64) error {
	total, err := c.power.GetTotalVotingPower()
	if err != nil {
		return err
	}
	w, err := c.window.Get(keyWindow)
	if err != nil {
		return err
	}
	switch {
	case w == nil:
		w, err = period.New(now, c.params.Window, total, nil)
	case w.AssertElapsed(now) == nil:
		w, err = w.Next(now)
	}
	if err != nil {
		return err
	}
	if err := w.UpdateValue(now, total); err != nil {
		return err
	}
	return c.window.Set(keyWindow, w)
}

// TimeWeightedTotal returns the windowed average of the total voting power,
// falling back to the current total before the first checkpoint.
func (c *Controller) TimeWeightedTotal(now uint64) (*uint256.Int, error) {
	w, err := c.window.Get(keyWindow)
	if err != nil {
		return nil, err
	}
	if w != nil {
		if avg := w.CalculateAverage(now); !avg.IsZero() {
			return avg, nil
		}
	}
	return c.power.GetTotalVotingPower()
}

// CalculateBoost returns the boost of account on amount in pool. The power
// of account is decayed to now, an expired lock gets the minimum boost.
func (c *Controller) CalculateBoost(account, pool ve.Address, amount *uint256.Int, now uint64) (uint64, *uint256.Int, error) {
	ok, err := c.pools.Get(pool)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, ErrPoolNotSupported
	}
	balance, err := c.power.GetVotingPower(account, now)
	if err != nil {
		return 0, nil, err
	}
	total, err := c.TimeWeightedTotal(now)
	if err != nil {
		return 0, nil, err
	}
	return Calculate(balance, total, amount, c.params)
}

// UpdateWorkingBalance stores the boosted amount of account in pool.
// The pool itself or a manager may call it.
func (c *Controller) UpdateWorkingBalance(caller, account, pool ve.Address, amount *uint256.Int, now uint64) (*uint256.Int, error) {
	if caller != pool {
		if err := c.acl.Require(access.Manager, caller); err != nil {
			return nil, err
		}
	}
	if err := c.Checkpoint(now); err != nil {
		return nil, err
	}
	if amount == nil || amount.IsZero() {
		c.working.Delete(workingKey(account, pool))
		return new(uint256.Int), nil
	}
	_, boosted, err := c.CalculateBoost(account, pool, amount, now)
	if err != nil {
		return nil, err
	}
	if err := c.working.Set(workingKey(account, pool), boosted); err != nil {
		return nil, err
	}
	return boosted, nil
}

// WorkingBalance returns the last stored boosted amount of account in pool.
func (c *Controller) WorkingBalance(account, pool ve.Address) (*uint256.Int, error) {
	v, err := c.working.Get(workingKey(account, pool))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(uint256.Int), nil
	}
	return v, nil
}
