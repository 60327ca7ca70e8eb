// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/ve"
)

// Scenario is a timed list of engine operations.
type Scenario struct {
	Start uint64 `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Amounts are whole tokens. Expect is a substring of
// the error the step must fail with, empty for success.
type Step struct {
	Advance  uint64     `yaml:"advance"`
	Op       string     `yaml:"op"`
	Caller   ve.Address `yaml:"caller"`
	Account  ve.Address `yaml:"account"`
	Gauge    ve.Address `yaml:"gauge"`
	Kind     gauge.Kind `yaml:"kind"`
	Role     string     `yaml:"role"`
	Action   string     `yaml:"action"`
	Amount   uint64     `yaml:"amount"`
	Duration uint64     `yaml:"duration"`
	Bps      uint64     `yaml:"bps"`
	Expect   string     `yaml:"expect"`
}

type simClock struct{ now uint64 }

func (c *simClock) Now() uint64 { return c.now }

type simulator struct {
	engine *engine.Engine
	clock  *simClock
	out    io.Writer
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	return &sc, nil
}

func simulateAction(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	initLogger(nil, lvl, ctx.Bool(jsonLogsFlag.Name))

	if !ctx.IsSet(scenarioFlag.Name) {
		return errors.New("missing -scenario")
	}
	sc, err := loadScenario(ctx.String(scenarioFlag.Name))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	db, err := lvldb.NewMem()
	if err != nil {
		return err
	}
	defer db.Close()

	sim, err := newSimulator(db, cfg, sc.Start, ctx.App.Writer)
	if err != nil {
		return err
	}
	return sim.run(context.Background(), sc.Steps)
}

func newSimulator(db *lvldb.LevelDB, cfg engine.Config, start uint64, out io.Writer) (*simulator, error) {
	clock := &simClock{now: start}
	e, err := engine.New(db, cfg, engine.WithClock(clock.Now))
	if err != nil {
		return nil, err
	}
	return &simulator{engine: e, clock: clock, out: out}, nil
}

func (s *simulator) run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		s.clock.now += step.Advance
		result, err := s.apply(ctx, step)

		switch {
		case step.Expect == "" && err != nil:
			return errors.Wrapf(err, "step %d (%s)", i, step.Op)
		case step.Expect != "" && err == nil:
			return errors.Errorf("step %d (%s): expected error %q", i, step.Op, step.Expect)
		case step.Expect != "" && !strings.Contains(err.Error(), step.Expect):
			return errors.Errorf("step %d (%s): expected error %q, got %v", i, step.Op, step.Expect, err)
		}

		status := "ok"
		if err != nil {
			status = "reverted: " + err.Error()
		} else if result != nil {
			status = "ok " + result.Dec()
		}
		fmt.Fprintf(s.out, "%4d  @%d  %-28s %s\n", i, s.clock.now, step.Op, status)
		log.Debug("step applied", "index", i, "op", step.Op, "err", err)
	}
	return nil
}

// apply runs one step, returning the amount the operation produced if any.
func (s *simulator) apply(ctx context.Context, st Step) (*uint256.Int, error) {
	e := s.engine
	amount := ve.Ether(st.Amount)

	switch st.Op {
	case "mint":
		return nil, e.Mint(ctx, st.Caller, st.Account, amount)
	case "fund_rewards":
		return nil, e.FundRewards(ctx, st.Caller, amount)
	case "grant_role":
		return nil, e.GrantRole(ctx, st.Caller, access.Role(st.Role), st.Account)
	case "revoke_role":
		return nil, e.RevokeRole(ctx, st.Caller, access.Role(st.Role), st.Account)

	case "create_lock":
		return nil, e.CreateLock(ctx, st.Caller, amount, st.Duration)
	case "increase_lock":
		return nil, e.IncreaseLock(ctx, st.Caller, amount)
	case "extend_lock":
		return nil, e.ExtendLock(ctx, st.Caller, st.Duration)
	case "withdraw":
		return e.Withdraw(ctx, st.Caller)
	case "emergency_withdraw":
		return e.EmergencyWithdraw(ctx, st.Caller)
	case "schedule_emergency":
		return nil, e.ScheduleEmergencyAction(ctx, st.Caller, escrow.Action(st.Action))
	case "cancel_emergency":
		return nil, e.CancelEmergencyAction(ctx, st.Caller, escrow.Action(st.Action))
	case "enable_emergency_withdraw":
		return nil, e.EnableEmergencyWithdraw(ctx, st.Caller)
	case "disable_emergency_withdraw":
		return nil, e.DisableEmergencyWithdraw(ctx, st.Caller)
	case "emergency_unlock":
		return nil, e.EmergencyUnlock(ctx, st.Caller)
	case "voting_power":
		var power *uint256.Int
		err := e.View(func() (err error) {
			power, err = e.Escrow().GetVotingPower(st.Account, s.clock.now)
			return
		})
		return power, err

	case "add_gauge":
		return nil, e.AddGauge(ctx, st.Caller, st.Gauge, st.Kind, amount)
	case "vote":
		return nil, e.Vote(ctx, st.Caller, st.Gauge, st.Bps)
	case "update_period":
		return nil, e.UpdatePeriod(ctx, st.Gauge)
	case "distribute":
		return e.DistributeRewards(ctx, st.Gauge)
	case "toggle_gauge":
		_, err := e.ToggleGaugeStatus(ctx, st.Caller, st.Gauge)
		return nil, err
	case "shutdown_gauge":
		return nil, e.EmergencyShutdown(ctx, st.Caller, st.Gauge)
	case "pause":
		return nil, e.EmergencyRevoke(ctx, st.Caller)
	case "unpause":
		return nil, e.Unpause(ctx, st.Caller)
	case "set_type_weight":
		return nil, e.SetTypeWeight(ctx, st.Caller, st.Kind, st.Bps)

	case "stake":
		return nil, e.Stake(ctx, st.Caller, st.Gauge, amount)
	case "unstake":
		return nil, e.Unstake(ctx, st.Caller, st.Gauge, amount)
	case "claim":
		return e.ClaimReward(ctx, st.Caller, st.Gauge)
	case "vote_direction":
		return nil, e.VoteDirection(ctx, st.Caller, st.Gauge, st.Bps)
	case "checkpoint_gauge":
		return nil, e.CheckpointGauge(ctx, st.Account, st.Gauge)
	case "earned":
		var earned *uint256.Int
		err := e.View(func() error {
			g, err := e.Gauge(st.Gauge)
			if err != nil {
				return err
			}
			earned, err = g.Earned(st.Account, s.clock.now)
			return err
		})
		return earned, err
	default:
		return nil, errors.Errorf("unknown op %q", st.Op)
	}
}
