// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package escrow locks the governance token in exchange for decaying,
// non-transferable voting power.
package escrow

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/escrow/checkpoints"
	"github.com/vechain/veboost/builtin/escrow/decay"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/builtin/timelock"
	"github.com/vechain/veboost/builtin/token"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

var (
	slotLocks       = ve.NameToSlot("escrow-locks")
	slotPoints      = ve.NameToSlot("escrow-points")
	slotTotalLocked = ve.NameToSlot("escrow-total-locked")
	slotClock       = ve.NameToSlot("escrow-clock")
	slotCheckpoints = ve.NameToSlot("escrow-checkpoints")
	slotProposals   = ve.NameToSlot("escrow-proposals")
	slotVotes       = ve.NameToSlot("escrow-votes")
	slotTimelock    = ve.NameToSlot("escrow-timelock")
	slotWithdrawOn  = ve.NameToSlot("escrow-emergency-withdraw")
	slotUnlocked    = ve.NameToSlot("escrow-emergency-unlock")

	// SupplyAccount keys the total supply history in the checkpoint index.
	SupplyAccount = ve.Address{}

	logger = log.WithContext("pkg", "escrow")
)

// Escrow is the lock registry. It owns the locked tokens and the voting power ledger.
type Escrow struct {
	address     ve.Address
	cfg         Config
	minDuration *solidity.ConfigVariable
	maxDuration *solidity.ConfigVariable
	sctx        *solidity.Context

	locks       *solidity.Mapping[ve.Address, *Lock]
	points      *solidity.Mapping[ve.Address, *decay.Point]
	totalLocked *solidity.Uint256
	clock       *solidity.Uint256
	checkpoints *checkpoints.Index
	proposals   *solidity.Mapping[ve.Bytes32, *Snapshot]
	votes       *solidity.Mapping[ve.Bytes32, bool]
	timelock    *timelock.Timelock
	withdrawOn  *solidity.Bool
	unlocked    *solidity.Bool

	power  *token.Token // voting power balances
	locked *token.Token // the locked governance token
	acl    *access.Control
}

// New creates the escrow bound to sctx, locking the given token.
func New(sctx *solidity.Context, cfg Config, locked *token.Token, acl *access.Control) *Escrow {
	return &Escrow{
		address:     sctx.Address(),
		cfg:         cfg,
		minDuration: solidity.NewConfigVariable("escrow-min-lock-duration", cfg.Bounds.MinDuration),
		maxDuration: solidity.NewConfigVariable("escrow-max-lock-duration", cfg.Bounds.MaxDuration),
		sctx:        sctx,
		locks:       solidity.NewMapping[ve.Address, *Lock](sctx, slotLocks),
		points:      solidity.NewMapping[ve.Address, *decay.Point](sctx, slotPoints),
		totalLocked: solidity.NewUint256(sctx, slotTotalLocked),
		clock:       solidity.NewUint256(sctx, slotClock),
		checkpoints: checkpoints.New(sctx, slotCheckpoints),
		proposals:   solidity.NewMapping[ve.Bytes32, *Snapshot](sctx, slotProposals),
		votes:       solidity.NewMapping[ve.Bytes32, bool](sctx, slotVotes),
		timelock:    timelock.New(sctx, slotTimelock, cfg.EmergencyDelay),
		withdrawOn:  solidity.NewBool(sctx, slotWithdrawOn),
		unlocked:    solidity.NewBool(sctx, slotUnlocked),
		power:       token.New("veRAAC", sctx),
		locked:      locked,
		acl:         acl,
	}
}

// Address returns the custody address of locked tokens.
func (e *Escrow) Address() ve.Address {
	return e.address
}

// Bounds returns the lock durations in effect.
func (e *Escrow) Bounds() (decay.Bounds, error) {
	minDuration, err := e.minDuration.Get(e.sctx)
	if err != nil {
		return decay.Bounds{}, err
	}
	maxDuration, err := e.maxDuration.Get(e.sctx)
	if err != nil {
		return decay.Bounds{}, err
	}
	return decay.Bounds{MinDuration: minDuration, MaxDuration: maxDuration}, nil
}

// SetLockDurations overrides the accepted lock durations. Admin only.
func (e *Escrow) SetLockDurations(caller ve.Address, minDuration, maxDuration uint64) error {
	if err := e.acl.Require(access.Admin, caller); err != nil {
		return err
	}
	if minDuration == 0 || minDuration > maxDuration {
		return ErrInvalidDuration
	}
	e.minDuration.Override(e.sctx, minDuration)
	e.maxDuration.Override(e.sctx, maxDuration)
	return nil
}

func (e *Escrow) getLock(account ve.Address) (*Lock, error) {
	lock, err := e.locks.Get(account)
	if err != nil {
		return nil, err
	}
	if lock == nil || lock.Amount == nil || lock.Amount.IsZero() {
		return nil, nil
	}
	return lock, nil
}

func (e *Escrow) requireActive() error {
	unlocked, err := e.unlocked.Get()
	if err != nil {
		return err
	}
	if unlocked {
		return ErrEmergencyUnlocked
	}
	return nil
}

func (e *Escrow) checkTotalLocked(extra *uint256.Int) error {
	total, err := e.totalLocked.Get()
	if err != nil {
		return err
	}
	if next, overflow := new(uint256.Int).AddOverflow(total, extra); overflow || next.Gt(e.cfg.MaxTotalLocked) {
		return ErrTotalLockedExceeded
	}
	return nil
}

// CreateLock locks amount of the caller for duration seconds.
func (e *Escrow) CreateLock(caller ve.Address, amount *uint256.Int, duration, now uint64) error {
	if caller.IsZero() {
		return ErrInvalidAddress
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	existing, err := e.getLock(caller)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrLockExists
	}
	if amount.Gt(e.cfg.MaxLockAmount) {
		return ErrAmountExceedsLimit
	}
	if err := e.checkTotalLocked(amount); err != nil {
		return err
	}
	bounds, err := e.Bounds()
	if err != nil {
		return err
	}
	point, err := decay.CreatePoint(amount, now+duration, now, bounds)
	if err != nil {
		return err
	}

	lock := &Lock{Amount: new(uint256.Int).Set(amount), End: now + duration}
	if err := e.apply(caller, lock, point, amount, now); err != nil {
		return err
	}
	// custody transfer happens after every internal update
	if err := e.locked.Transfer(caller, e.address, amount); err != nil {
		return err
	}
	logger.Debug("lock created", "account", caller, "amount", amount, "end", lock.End, "power", point.Bias)
	return nil
}

// IncreaseLock adds extra to the caller's lock, keeping its unlock time.
func (e *Escrow) IncreaseLock(caller ve.Address, extra *uint256.Int, now uint64) error {
	if extra == nil || extra.IsZero() {
		return ErrInvalidAmount
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	lock, err := e.getLock(caller)
	if err != nil {
		return err
	}
	if lock == nil {
		return ErrLockNotFound
	}
	if now >= lock.End {
		return ErrLockExpired
	}
	amount, overflow := new(uint256.Int).AddOverflow(lock.Amount, extra)
	if overflow || amount.Gt(e.cfg.MaxLockAmount) {
		return ErrAmountExceedsLimit
	}
	if err := e.checkTotalLocked(extra); err != nil {
		return err
	}
	bounds, err := e.Bounds()
	if err != nil {
		return err
	}
	point, err := decay.Recompute(amount, lock.End, now, bounds)
	if err != nil {
		return err
	}

	if err := e.apply(caller, &Lock{Amount: amount, End: lock.End}, point, extra, now); err != nil {
		return err
	}
	if err := e.locked.Transfer(caller, e.address, extra); err != nil {
		return err
	}
	logger.Debug("lock increased", "account", caller, "amount", amount, "power", point.Bias)
	return nil
}

// ExtendLock moves the caller's unlock time to now+newDuration.
func (e *Escrow) ExtendLock(caller ve.Address, newDuration, now uint64) error {
	if err := e.requireActive(); err != nil {
		return err
	}
	lock, err := e.getLock(caller)
	if err != nil {
		return err
	}
	if lock == nil {
		return ErrLockNotFound
	}
	if now >= lock.End {
		return ErrLockExpired
	}
	newEnd := now + newDuration
	if newEnd <= lock.End {
		return ErrInvalidDuration
	}
	bounds, err := e.Bounds()
	if err != nil {
		return err
	}
	point, err := decay.CreatePoint(lock.Amount, newEnd, now, bounds)
	if err != nil {
		return err
	}

	if err := e.apply(caller, &Lock{Amount: lock.Amount, End: newEnd}, point, new(uint256.Int), now); err != nil {
		return err
	}
	logger.Debug("lock extended", "account", caller, "end", newEnd, "power", point.Bias)
	return nil
}

// Withdraw releases an expired lock and returns the unlocked amount.
func (e *Escrow) Withdraw(caller ve.Address, now uint64) (*uint256.Int, error) {
	lock, err := e.getLock(caller)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, ErrLockNotFound
	}
	if now < lock.End {
		unlocked, err := e.unlocked.Get()
		if err != nil {
			return nil, err
		}
		if !unlocked {
			return nil, ErrLockNotExpired
		}
	}
	if err := e.release(caller, lock); err != nil {
		return nil, err
	}
	logger.Debug("lock withdrawn", "account", caller, "amount", lock.Amount)
	return lock.Amount, nil
}

// EmergencyWithdraw releases a lock before expiry once emergency withdraw is enabled.
func (e *Escrow) EmergencyWithdraw(caller ve.Address) (*uint256.Int, error) {
	enabled, err := e.withdrawOn.Get()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrEmergencyNotEnabled
	}
	lock, err := e.getLock(caller)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, ErrLockNotFound
	}
	if err := e.release(caller, lock); err != nil {
		return nil, err
	}
	logger.Info("emergency withdraw", "account", caller, "amount", lock.Amount)
	return lock.Amount, nil
}

// apply stores the lock and point, adjusts the voting power balance to the
// point's current power and the locked total by lockedDelta, then checkpoints.
func (e *Escrow) apply(account ve.Address, lock *Lock, point *decay.Point, lockedDelta *uint256.Int, now uint64) error {
	if err := e.locks.Set(account, lock); err != nil {
		return err
	}
	if err := e.points.Set(account, point); err != nil {
		return err
	}
	if err := e.totalLocked.Add(lockedDelta); err != nil {
		return err
	}
	if err := e.syncBalance(account, decay.PowerAt(point, now)); err != nil {
		return err
	}
	return e.writeCheckpoints(account)
}

func (e *Escrow) release(account ve.Address, lock *Lock) error {
	e.locks.Delete(account)
	e.points.Delete(account)
	if err := e.totalLocked.Sub(lock.Amount); err != nil {
		return errors.Wrap(err, "total locked")
	}
	if err := e.syncBalance(account, new(uint256.Int)); err != nil {
		return err
	}
	if err := e.writeCheckpoints(account); err != nil {
		return err
	}
	return e.locked.Transfer(e.address, account, lock.Amount)
}

// syncBalance mints or burns the difference between the balance and target.
func (e *Escrow) syncBalance(account ve.Address, target *uint256.Int) error {
	bal, err := e.power.BalanceOf(account)
	if err != nil {
		return err
	}
	switch bal.Cmp(target) {
	case -1:
		return e.power.Mint(account, new(uint256.Int).Sub(target, bal))
	case 1:
		return e.power.Burn(account, new(uint256.Int).Sub(bal, target))
	}
	return nil
}

// writeCheckpoints advances the logical clock and records the account
// balance and the total supply at the new index.
func (e *Escrow) writeCheckpoints(account ve.Address) error {
	index, err := e.clock.Get()
	if err != nil {
		return err
	}
	index.AddUint64(index, 1)
	e.clock.Set(index)

	bal, err := e.power.BalanceOf(account)
	if err != nil {
		return err
	}
	if err := e.checkpoints.Write(account, index.Uint64(), bal); err != nil {
		return err
	}
	supply, err := e.power.TotalSupply()
	if err != nil {
		return err
	}
	return e.checkpoints.Write(SupplyAccount, index.Uint64(), supply)
}

// Transfer always fails, voting power is not transferable.
func (e *Escrow) Transfer(_, _ ve.Address, _ *uint256.Int) error {
	return ErrTransferNotAllowed
}

// TransferFrom always fails, voting power is not transferable.
func (e *Escrow) TransferFrom(_, _, _ ve.Address, _ *uint256.Int) error {
	return ErrTransferNotAllowed
}

// Approve always fails, voting power is not transferable.
func (e *Escrow) Approve(_, _ ve.Address, _ *uint256.Int) error {
	return ErrTransferNotAllowed
}
