// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine composes the escrow, boost controller, gauge registry and
// gauges over one state, and runs every mutation as an atomic unit.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/boost"
	"github.com/vechain/veboost/builtin/controller"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/builtin/token"
	"github.com/vechain/veboost/co"
	"github.com/vechain/veboost/kv"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/state"
	"github.com/vechain/veboost/ve"
)

// Addresses of the builtin contracts.
var (
	AccessAddress      = ve.BytesToAddress([]byte("Access"))
	LockedTokenAddress = ve.BytesToAddress([]byte("RAAC"))
	RewardTokenAddress = ve.BytesToAddress([]byte("Reward"))
	EscrowAddress      = ve.BytesToAddress([]byte("Escrow"))
	BoostAddress       = ve.BytesToAddress([]byte("Boost"))
	RegistryAddress    = ve.BytesToAddress([]byte("Registry"))

	ErrReentrant = reverts.New("reentrant call")

	logger = log.WithContext("pkg", "engine")
)

type executingKey struct{}

// Option customizes an Engine.
type Option func(*options)

type options struct {
	clock     func() uint64
	cacheSize int
}

// WithClock sets the source of the current unix time.
func WithClock(clock func() uint64) Option {
	return func(o *options) { o.clock = clock }
}

// WithCacheSize enables a read cache of n storage slots.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Engine owns the state and all builtins. Mutations are serialized and
// either commit entirely or not at all.
type Engine struct {
	cfg   Config
	clock func() uint64

	mu        sync.RWMutex
	st        *state.State
	committed co.Signal

	acl      *access.Control
	locked   *token.Token
	reward   *token.Token
	escrow   *escrow.Escrow
	boost    *boost.Controller
	registry *controller.Registry
}

// New binds the builtins over db and initializes the access control on first use.
func New(db kv.Store, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: func() uint64 { return uint64(time.Now().Unix()) }}
	for _, opt := range opts {
		opt(&o)
	}

	st := state.New(db)
	if o.cacheSize > 0 {
		st = state.NewWithCache(db, o.cacheSize)
	}
	e := &Engine{cfg: cfg, clock: o.clock, st: st}
	e.acl = access.New(solidity.NewContext(AccessAddress, st))
	e.locked = token.New("RAAC", solidity.NewContext(LockedTokenAddress, st))
	e.reward = token.New("Reward", solidity.NewContext(RewardTokenAddress, st))
	e.escrow = escrow.New(solidity.NewContext(EscrowAddress, st), cfg.escrowConfig(), e.locked, e.acl)
	e.boost = boost.NewController(solidity.NewContext(BoostAddress, st), cfg.boostParams(), e.escrow, e.acl)
	e.registry = controller.New(solidity.NewContext(RegistryAddress, st), controller.Deps{
		Power:       e.escrow,
		Boost:       e.boost,
		RewardToken: e.reward,
		ACL:         e.acl,
		Gauges:      e.bindGauge,
		Emissions:   cfg.emissions(),
	})

	if err := e.Execute(context.Background(), "genesis", e.genesis); err != nil {
		return nil, errors.Wrap(err, "genesis")
	}
	return e, nil
}

func (e *Engine) genesis(context.Context) error {
	if err := e.acl.Initialize(e.cfg.Admin); err != nil {
		return err
	}
	ok, err := e.acl.HasRole(access.Registry, RegistryAddress)
	if err != nil || ok {
		return err
	}
	return e.acl.Grant(e.cfg.Admin, access.Registry, RegistryAddress)
}

func (e *Engine) bindGauge(addr ve.Address, kind gauge.Kind) *gauge.Gauge {
	return gauge.New(solidity.NewContext(addr, e.st), kind, gauge.Deps{
		StakingToken: e.locked,
		RewardToken:  e.reward,
		Weights:      e.registry,
		Booster:      e.boost,
		Power:        e.escrow,
		ACL:          e.acl,
		Period:       e.cfg.kind(kind).Period,
		ClaimDelay:   e.cfg.ClaimInterval,
	})
}

// Now returns the current unix time of the engine clock.
func (e *Engine) Now() uint64 {
	return e.clock()
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Execute runs fn under a state checkpoint. An error from fn reverts every
// change fn made, success commits them to the store. Calling Execute from
// within fn fails with ErrReentrant.
func (e *Engine) Execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if ctx.Value(executingKey{}) != nil {
		return ErrReentrant
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	startTime := time.Now()
	checkpoint := e.st.NewCheckpoint()
	if err := fn(context.WithValue(ctx, executingKey{}, op)); err != nil {
		e.st.RevertTo(checkpoint)
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "rejected"})
		if reverts.IsRevertErr(err) {
			logger.Info("operation rejected", "op", op, "error", err)
		} else {
			logger.Error("operation failed", "op", op, "error", err)
		}
		return err
	}
	changes, err := e.st.Commit()
	if err != nil {
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "failed"})
		logger.Error("failed to commit", "op", op, "error", err)
		return errors.Wrap(err, "commit")
	}

	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	metricOpDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"op": op})
	metricStorageChanges().Add(int64(changes))
	if locked, err := e.escrow.TotalLocked(); err == nil {
		metricTotalLocked().Set(int64(new(uint256.Int).Div(locked, ve.Precision).Uint64()))
	}
	logger.Debug("operation committed", "op", op, "changes", changes)
	if report, moved := e.st.CacheStats(); moved {
		logger.Debug("state cache stats", "hit", report.Hit, "miss", report.Miss, "rate", report.HitRate())
	}
	e.committed.Broadcast()
	return nil
}

// NewCommitWaiter returns a waiter woken after each committed operation.
func (e *Engine) NewCommitWaiter() co.Waiter {
	return e.committed.NewWaiter()
}

// View runs fn with shared access to the state. fn must not mutate.
func (e *Engine) View(fn func() error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn()
}

// Access returns the access control bound to the engine state.
func (e *Engine) Access() *access.Control { return e.acl }

func (e *Engine) LockedToken() *token.Token { return e.locked }

func (e *Engine) RewardToken() *token.Token { return e.reward }

func (e *Engine) Escrow() *escrow.Escrow { return e.escrow }

func (e *Engine) Boost() *boost.Controller { return e.boost }

func (e *Engine) Registry() *controller.Registry { return e.registry }

// Gauge binds a registered gauge.
func (e *Engine) Gauge(addr ve.Address) (*gauge.Gauge, error) {
	return e.registry.Gauge(addr)
}
