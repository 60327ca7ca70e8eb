// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package controller implements the gauge registry. Accounts vote a share of
// their voting power onto gauges and each period's emission is split across
// gauges by weight and type weight.
package controller

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/boost"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/builtin/period"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/builtin/token"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

var (
	slotGauges      = ve.NameToSlot("registry-gauges")
	slotGaugeList   = ve.NameToSlot("registry-gauge-list")
	slotTotalWeight = ve.NameToSlot("registry-total-weight")
	slotTypeWeights = ve.NameToSlot("registry-type-weights")
	slotVotes       = ve.NameToSlot("registry-votes")
	slotUserTotals  = ve.NameToSlot("registry-user-totals")
	slotPaused      = ve.NameToSlot("registry-paused")

	logger = log.WithContext("pkg", "controller")
)

// GaugeInfo is the registry record of a gauge.
type GaugeInfo struct {
	Kind       gauge.Kind
	Weight     *uint256.Int
	Active     bool
	LastUpdate uint64
	Period     *period.Period // time-weighted gauge weight

	// Distributed is set once the emission of the current registry period
	// was sent to the gauge and cleared when the period rolls.
	Distributed bool
}

// UserVote is the share of voting power an account assigned to a gauge.
type UserVote struct {
	Bps          uint64
	Contribution *uint256.Int // Bps * voting power / 10000 at vote time
}

type typeWeight struct {
	Bps uint64
}

// VotingPower reads the live voting power of an account.
type VotingPower interface {
	GetVotingPower(account ve.Address, now uint64) (*uint256.Int, error)
}

// GaugeFactory binds the gauge deployed at addr.
type GaugeFactory func(addr ve.Address, kind gauge.Kind) *gauge.Gauge

// Deps are the collaborators of the registry.
type Deps struct {
	Power       VotingPower
	Boost       *boost.Controller
	RewardToken *token.Token
	ACL         *access.Control
	Gauges      GaugeFactory
	Emissions   map[gauge.Kind]*uint256.Int // annual emission per kind
}

// Registry registers gauges and apportions emissions across them.
type Registry struct {
	address ve.Address
	deps    Deps

	gauges      *solidity.Mapping[ve.Address, *GaugeInfo]
	list        *solidity.Array[ve.Address]
	totalWeight *solidity.Uint256
	typeWeights *solidity.Mapping[gauge.Kind, *typeWeight]
	votes       *solidity.Mapping[ve.Bytes32, *UserVote]
	userTotals  *solidity.Mapping[ve.Address, uint64]
	paused      *solidity.Bool
}

func New(sctx *solidity.Context, deps Deps) *Registry {
	return &Registry{
		address:     sctx.Address(),
		deps:        deps,
		gauges:      solidity.NewMapping[ve.Address, *GaugeInfo](sctx, slotGauges),
		list:        solidity.NewArray[ve.Address](sctx, slotGaugeList),
		totalWeight: solidity.NewUint256(sctx, slotTotalWeight),
		typeWeights: solidity.NewMapping[gauge.Kind, *typeWeight](sctx, slotTypeWeights),
		votes:       solidity.NewMapping[ve.Bytes32, *UserVote](sctx, slotVotes),
		userTotals:  solidity.NewMapping[ve.Address, uint64](sctx, slotUserTotals),
		paused:      solidity.NewBool(sctx, slotPaused),
	}
}

func voteKey(account, gauge ve.Address) ve.Bytes32 {
	return ve.Blake2b(account.Bytes(), gauge.Bytes())
}

func (r *Registry) Address() ve.Address {
	return r.address
}

func (r *Registry) whenNotPaused() error {
	paused, err := r.paused.Get()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// info returns the record of a registered gauge.
func (r *Registry) info(addr ve.Address) (*GaugeInfo, error) {
	info, err := r.gauges.Get(addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrGaugeNotFound
	}
	if info.Weight == nil {
		info.Weight = new(uint256.Int)
	}
	return info, nil
}

// Gauge binds a registered gauge.
func (r *Registry) Gauge(addr ve.Address) (*gauge.Gauge, error) {
	info, err := r.info(addr)
	if err != nil {
		return nil, err
	}
	return r.deps.Gauges(addr, info.Kind), nil
}

// AddGauge registers and initializes the gauge at addr. Manager only.
func (r *Registry) AddGauge(caller, addr ve.Address, kind gauge.Kind, initialWeight *uint256.Int, now uint64) error {
	if err := r.deps.ACL.Require(access.Manager, caller); err != nil {
		return err
	}
	if err := r.whenNotPaused(); err != nil {
		return err
	}
	if addr.IsZero() {
		return ErrInvalidAddress
	}
	if !kind.Valid() {
		return gauge.ErrInvalidGaugeType
	}
	exists, err := r.gauges.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return ErrGaugeAlreadyExists
	}
	weight := new(uint256.Int)
	if initialWeight != nil {
		weight.Set(initialWeight)
	}
	g := r.deps.Gauges(addr, kind)
	p, err := period.New(now, g.PeriodDuration(), weight, nil)
	if err != nil {
		return err
	}
	if err := r.gauges.Set(addr, &GaugeInfo{
		Kind:       kind,
		Weight:     weight,
		Active:     true,
		LastUpdate: now,
		Period:     p,
	}); err != nil {
		return err
	}
	if _, err := r.list.Push(addr); err != nil {
		return err
	}
	if err := r.totalWeight.Add(weight); err != nil {
		return err
	}
	if err := r.deps.Boost.AddSupportedPool(r.address, addr); err != nil {
		return err
	}
	if err := g.Initialize(now, r.PeriodEmission(kind)); err != nil {
		return err
	}
	logger.Debug("gauge added", "gauge", addr, "kind", kind, "weight", weight)
	return nil
}

// Vote assigns bps of the caller's voting power to a gauge, replacing the
// previous vote of the caller for that gauge. The votes of one account sum
// to at most 10000 bps across all gauges.
func (r *Registry) Vote(caller, addr ve.Address, bps uint64, now uint64) error {
	if err := r.whenNotPaused(); err != nil {
		return err
	}
	info, err := r.info(addr)
	if err != nil {
		return err
	}
	if bps > ve.BasisPoints {
		return ErrInvalidWeight
	}
	power, err := r.deps.Power.GetVotingPower(caller, now)
	if err != nil {
		return err
	}
	if power.IsZero() {
		return ErrNoVotingPower
	}

	key := voteKey(caller, addr)
	old, err := r.votes.Get(key)
	if err != nil {
		return err
	}
	if old == nil {
		old = &UserVote{Contribution: new(uint256.Int)}
	}
	used, err := r.userTotals.Get(caller)
	if err != nil {
		return err
	}
	used = used - old.Bps + bps
	if used > ve.BasisPoints {
		return ErrInvalidWeight
	}

	contribution := new(uint256.Int).Mul(power, uint256.NewInt(bps))
	contribution.Div(contribution, uint256.NewInt(ve.BasisPoints))

	total, err := r.totalWeight.Get()
	if err != nil {
		return err
	}
	info.Weight = replace(info.Weight, old.Contribution, contribution)
	r.totalWeight.Set(replace(total, old.Contribution, contribution))
	if err := info.Period.UpdateValue(now, info.Weight); err != nil {
		return err
	}
	info.LastUpdate = now
	if err := r.gauges.Set(addr, info); err != nil {
		return err
	}

	if bps == 0 {
		r.votes.Delete(key)
	} else if err := r.votes.Set(key, &UserVote{Bps: bps, Contribution: contribution}); err != nil {
		return err
	}
	if err := r.userTotals.Set(caller, used); err != nil {
		return err
	}
	logger.Debug("voted", "gauge", addr, "account", caller, "bps", bps, "contribution", contribution)
	return nil
}

// replace returns v - prev + next, with v - prev floored at zero.
func replace(v, prev, next *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if v.Gt(prev) {
		z.Sub(v, prev)
	}
	return z.Add(z, next)
}
