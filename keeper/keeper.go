// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keeper runs the permissionless upkeep of the registry: rolling
// elapsed gauge periods and distributing the emission of each new period.
package keeper

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/veboost/builtin/controller"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/co"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/metrics"
	"github.com/vechain/veboost/ve"
)

var (
	logger = log.WithContext("pkg", "keeper")

	metricRolls = metrics.LazyLoadCounterVec("keeper_rolls", []string{"result"})
)

// Keeper rolls the periods of registered gauges as soon as they elapse.
type Keeper struct {
	engine   *engine.Engine
	interval time.Duration
}

func New(e *engine.Engine, interval time.Duration) *Keeper {
	return &Keeper{engine: e, interval: interval}
}

// Run checks for due gauges every interval and after each committed
// operation, until ctx is done.
func (k *Keeper) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	commits := k.engine.NewCommitWaiter()

	for {
		if _, err := k.Tick(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("keeper tick failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-commits.C():
		}
	}
}

// due lists the active gauges whose registry period has elapsed.
func (k *Keeper) due() ([]ve.Address, error) {
	var due []ve.Address
	err := k.engine.View(func() error {
		reg := k.engine.Registry()
		list, err := reg.Gauges()
		if err != nil {
			return err
		}
		now := k.engine.Now()
		for _, addr := range list {
			info, err := reg.GaugeInfo(addr)
			if err != nil {
				return err
			}
			if info.Active && info.Period.AssertElapsed(now) == nil {
				due = append(due, addr)
			}
		}
		return nil
	})
	return due, err
}

// Tick rolls every due gauge and distributes its new period emission,
// returning the gauges rolled.
func (k *Keeper) Tick(ctx context.Context) ([]ve.Address, error) {
	due, err := k.due()
	if err != nil {
		return nil, err
	}
	var rolled []ve.Address
	for _, addr := range due {
		if err := ctx.Err(); err != nil {
			return rolled, err
		}
		if err := k.engine.UpdatePeriod(ctx, addr); err != nil {
			metricRolls().AddWithLabel(1, map[string]string{"result": "failed"})
			logger.Debug("period roll skipped", "gauge", addr, "err", err)
			continue
		}
		metricRolls().AddWithLabel(1, map[string]string{"result": "ok"})
		rolled = append(rolled, addr)

		reward, err := k.engine.DistributeRewards(ctx, addr)
		switch {
		case err == nil:
			logger.Info("period rolled", "gauge", addr, "reward", reward)
		case errors.Is(err, controller.ErrPaused),
			errors.Is(err, controller.ErrAlreadyDistributed),
			errors.Is(err, gauge.ErrRewardCapExceeded),
			errors.Is(err, gauge.ErrZeroRewardRate):
			logger.Debug("distribution skipped", "gauge", addr, "err", err)
		default:
			logger.Warn("distribution failed", "gauge", addr, "err", err)
		}
	}
	return rolled, nil
}

// Go runs the keeper on goes. The returned func stops it and waits for
// the loop to exit.
func (k *Keeper) Go(goes *co.Goes) func() {
	return goes.GoContext(context.Background(), k.Run)
}
