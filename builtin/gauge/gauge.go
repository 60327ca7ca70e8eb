// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gauge implements staking with reward-per-token accrual, boosted by
// voting power and bounded by a per period emission cap.
package gauge

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/period"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/builtin/token"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

var (
	slotStakes      = ve.NameToSlot("gauge-stakes")
	slotTotalStaked = ve.NameToSlot("gauge-total-staked")
	slotWorking     = ve.NameToSlot("gauge-working-supply")
	slotRewardRate  = ve.NameToSlot("gauge-reward-rate")
	slotRPTStored   = ve.NameToSlot("gauge-reward-per-token")
	slotLastUpdate  = ve.NameToSlot("gauge-last-update")
	slotPeriod      = ve.NameToSlot("gauge-period")
	slotDirections  = ve.NameToSlot("gauge-directions")
	slotDirTotals   = ve.NameToSlot("gauge-direction-totals")
	keyState        = ve.NameToSlot("state")

	logger = log.WithContext("pkg", "gauge")
)

// UserState is the stake and reward accounting of one account.
type UserState struct {
	Balance            *uint256.Int
	RewardPerTokenPaid *uint256.Int
	Rewards            *uint256.Int
	LastClaimTime      uint64
	Working            *uint256.Int // boosted stake rewards accrue on
}

// PeriodState bounds the emission of the current period.
type PeriodState struct {
	PeriodStartTime uint64
	EmissionCap     *uint256.Int
	Distributed     *uint256.Int
	VotingPeriod    *period.Period // time-weighted direction of the gauge
}

// End returns the end of the emission period.
func (p *PeriodState) End() uint64 {
	return p.VotingPeriod.End()
}

// DirectionVote is the direction an account voted and the power it voted with.
type DirectionVote struct {
	Direction uint64
	Power     *uint256.Int
}

type directionTotals struct {
	Power       *uint256.Int
	WeightedSum *uint256.Int // sum of direction * power
}

// WeightSource supplies the weight a gauge holds in the registry.
// Stakers share it in proportion to their working balances.
type WeightSource interface {
	GaugeWeight(gauge ve.Address) (*uint256.Int, error)
}

// Booster scales a stake by the voting power of the account and records
// the result as its working balance.
type Booster interface {
	UpdateWorkingBalance(caller, account, pool ve.Address, amount *uint256.Int, now uint64) (*uint256.Int, error)
}

// VotingPower reads the live voting power of an account.
type VotingPower interface {
	GetVotingPower(account ve.Address, now uint64) (*uint256.Int, error)
}

// Deps are the collaborators of a gauge.
type Deps struct {
	StakingToken *token.Token
	RewardToken  *token.Token
	Weights      WeightSource
	Booster      Booster
	Power        VotingPower
	ACL          *access.Control
	Period       uint64 // period length, zero selects the kind default
	ClaimDelay   uint64 // minimum seconds between claims
}

// Gauge is one reward destination.
type Gauge struct {
	address ve.Address
	kind    Kind
	deps    Deps

	stakes        *solidity.Mapping[ve.Address, *UserState]
	totalStaked   *solidity.Uint256
	workingSupply *solidity.Uint256
	rewardRate  *solidity.Uint256
	rptStored   *solidity.Uint256
	lastUpdate  *solidity.Uint256
	state       *solidity.Mapping[ve.Bytes32, *PeriodState]
	directions  *solidity.Mapping[ve.Address, *DirectionVote]
	dirTotals   *solidity.Mapping[ve.Bytes32, *directionTotals]
}

func New(sctx *solidity.Context, kind Kind, deps Deps) *Gauge {
	if deps.Period == 0 {
		deps.Period = kind.PeriodDuration()
	}
	return &Gauge{
		address:     sctx.Address(),
		kind:        kind,
		deps:        deps,
		stakes:        solidity.NewMapping[ve.Address, *UserState](sctx, slotStakes),
		totalStaked:   solidity.NewUint256(sctx, slotTotalStaked),
		workingSupply: solidity.NewUint256(sctx, slotWorking),
		rewardRate:    solidity.NewUint256(sctx, slotRewardRate),
		rptStored:     solidity.NewUint256(sctx, slotRPTStored),
		lastUpdate:    solidity.NewUint256(sctx, slotLastUpdate),
		state:         solidity.NewMapping[ve.Bytes32, *PeriodState](sctx, slotPeriod),
		directions:    solidity.NewMapping[ve.Address, *DirectionVote](sctx, slotDirections),
		dirTotals:     solidity.NewMapping[ve.Bytes32, *directionTotals](sctx, slotDirTotals),
	}
}

func (g *Gauge) Address() ve.Address {
	return g.address
}

func (g *Gauge) Kind() Kind {
	return g.kind
}

// PeriodDuration returns the emission period length.
func (g *Gauge) PeriodDuration() uint64 {
	return g.deps.Period
}

// Initialize opens the first period at now with the given emission cap.
func (g *Gauge) Initialize(now uint64, emissionCap *uint256.Int) error {
	existing, err := g.state.Get(keyState)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyInitialized
	}
	voting, err := period.New(now, g.deps.Period, nil, nil)
	if err != nil {
		return err
	}
	g.lastUpdate.Set(uint256.NewInt(now))
	logger.Debug("gauge initialized", "gauge", g.address, "kind", g.kind, "cap", emissionCap)
	return g.state.Set(keyState, &PeriodState{
		PeriodStartTime: now,
		EmissionCap:     new(uint256.Int).Set(emissionCap),
		Distributed:     new(uint256.Int),
		VotingPeriod:    voting,
	})
}

// PeriodState returns the emission period state.
func (g *Gauge) PeriodState() (*PeriodState, error) {
	ps, err := g.state.Get(keyState)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		return nil, ErrNotInitialized
	}
	return ps, nil
}

func (g *Gauge) userState(account ve.Address) (*UserState, error) {
	us, err := g.stakes.Get(account)
	if err != nil {
		return nil, err
	}
	if us == nil {
		us = &UserState{}
	}
	if us.Balance == nil {
		us.Balance = new(uint256.Int)
	}
	if us.RewardPerTokenPaid == nil {
		us.RewardPerTokenPaid = new(uint256.Int)
	}
	if us.Rewards == nil {
		us.Rewards = new(uint256.Int)
	}
	if us.Working == nil {
		us.Working = new(uint256.Int)
	}
	return us, nil
}

// Stake deposits amount of the staking token for caller.
func (g *Gauge) Stake(caller ve.Address, amount *uint256.Int, now uint64) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	us, err := g.updateReward(caller, now)
	if err != nil {
		return err
	}
	us.Balance.Add(us.Balance, amount)
	if err := g.totalStaked.Add(amount); err != nil {
		return err
	}
	if err := g.syncWorkingBalance(caller, us, now); err != nil {
		return err
	}
	if err := g.deps.StakingToken.Transfer(caller, g.address, amount); err != nil {
		return err
	}
	logger.Debug("staked", "gauge", g.address, "account", caller, "amount", amount)
	return nil
}

// Withdraw returns amount of staked tokens to caller.
func (g *Gauge) Withdraw(caller ve.Address, amount *uint256.Int, now uint64) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	us, err := g.updateReward(caller, now)
	if err != nil {
		return err
	}
	if us.Balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	us.Balance.Sub(us.Balance, amount)
	if err := g.totalStaked.Sub(amount); err != nil {
		return err
	}
	if err := g.syncWorkingBalance(caller, us, now); err != nil {
		return err
	}
	if err := g.deps.StakingToken.Transfer(g.address, caller, amount); err != nil {
		return err
	}
	logger.Debug("withdrawn", "gauge", g.address, "account", caller, "amount", amount)
	return nil
}

// syncWorkingBalance boosts the stake of account into its working balance,
// moves the working supply by the change and stores us. Rewards must be
// accrued with the previous working balance first.
func (g *Gauge) syncWorkingBalance(account ve.Address, us *UserState, now uint64) error {
	boosted, err := g.deps.Booster.UpdateWorkingBalance(g.address, account, g.address, us.Balance, now)
	if err != nil {
		return err
	}
	if err := g.workingSupply.Sub(us.Working); err != nil {
		return err
	}
	if err := g.workingSupply.Add(boosted); err != nil {
		return err
	}
	us.Working = new(uint256.Int).Set(boosted)
	return g.stakes.Set(account, us)
}

// Checkpoint accrues rewards of account without changing its stake.
func (g *Gauge) Checkpoint(account ve.Address, now uint64) error {
	us, err := g.updateReward(account, now)
	if err != nil {
		return err
	}
	if account.IsZero() {
		return nil
	}
	return g.syncWorkingBalance(account, us, now)
}
