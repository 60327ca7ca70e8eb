// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauges

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/veboost/api/utils"
	"github.com/vechain/veboost/builtin/controller"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/ve"
)

const addressPattern = "{address:0x[0-9a-fA-F]{40}}"

type Gauges struct {
	engine *engine.Engine
}

func New(e *engine.Engine) *Gauges {
	return &Gauges{e}
}

func notFound(err error) error {
	if errors.Is(err, controller.ErrGaugeNotFound) {
		return utils.NotFound(err)
	}
	return err
}

func (g *Gauges) handleGetRegistry(w http.ResponseWriter, _ *http.Request) error {
	var out Registry
	err := g.engine.View(func() error {
		reg := g.engine.Registry()
		list, err := reg.Gauges()
		if err != nil {
			return err
		}
		total, err := reg.TotalWeight()
		if err != nil {
			return err
		}
		paused, err := reg.IsPaused()
		if err != nil {
			return err
		}
		out = Registry{list, utils.FromUint256(total), paused}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &out)
}

func (g *Gauges) handleAddGauge(w http.ResponseWriter, req *http.Request) error {
	var body AddGaugeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	weight := new(uint256.Int)
	if body.InitialWeight != nil {
		var err error
		if weight, err = utils.Amount(body.InitialWeight); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "initialWeight"))
		}
	}
	if err := g.engine.AddGauge(req.Context(), body.Caller, body.Address, body.Kind, weight); err != nil {
		return err
	}
	return g.writeGauge(w, body.Address)
}

func (g *Gauges) handleGetGauge(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return g.writeGauge(w, addr)
}

func (g *Gauges) writeGauge(w http.ResponseWriter, addr ve.Address) error {
	var out Gauge
	err := g.engine.View(func() error {
		reg := g.engine.Registry()
		now := g.engine.Now()
		info, err := reg.GaugeInfo(addr)
		if err != nil {
			return err
		}
		twWeight, err := reg.TimeWeightedWeight(addr, now)
		if err != nil {
			return err
		}
		typeWeight, err := reg.TypeWeight(info.Kind)
		if err != nil {
			return err
		}
		gg, err := reg.Gauge(addr)
		if err != nil {
			return err
		}
		staked, err := gg.TotalStaked()
		if err != nil {
			return err
		}
		working, err := gg.WorkingSupply()
		if err != nil {
			return err
		}
		rate, err := gg.RewardRate()
		if err != nil {
			return err
		}
		rpt, err := gg.RewardPerToken(now)
		if err != nil {
			return err
		}
		direction, err := gg.Direction()
		if err != nil {
			return err
		}
		ps, err := gg.PeriodState()
		if err != nil {
			return err
		}
		out = Gauge{
			Address:            addr,
			Kind:               info.Kind,
			Active:             info.Active,
			Weight:             utils.FromUint256(info.Weight),
			TimeWeightedWeight: utils.FromUint256(twWeight),
			TypeWeight:         typeWeight,
			TotalStaked:        utils.FromUint256(staked),
			WorkingSupply:      utils.FromUint256(working),
			RewardRate:         utils.FromUint256(rate),
			RewardPerToken:     utils.FromUint256(rpt),
			Direction:          direction,
			PeriodStart:        ps.PeriodStartTime,
			PeriodEnd:          ps.End(),
			EmissionCap:        utils.FromUint256(ps.EmissionCap),
			Distributed:        utils.FromUint256(ps.Distributed),
		}
		return nil
	})
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &out)
}

func (g *Gauges) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(req, "account")
	if err != nil {
		return err
	}

	var out Account
	err = g.engine.View(func() error {
		reg := g.engine.Registry()
		now := g.engine.Now()
		gg, err := reg.Gauge(addr)
		if err != nil {
			return err
		}
		us, err := gg.UserState(account)
		if err != nil {
			return err
		}
		earned, err := gg.Earned(account, now)
		if err != nil {
			return err
		}
		weight, err := gg.UserWeight(account)
		if err != nil {
			return err
		}
		vote, err := reg.UserVote(account, addr)
		if err != nil {
			return err
		}
		dv, err := gg.DirectionVote(account)
		if err != nil {
			return err
		}
		out = Account{
			Balance:        utils.FromUint256(us.Balance),
			Earned:         utils.FromUint256(earned),
			Weight:         utils.FromUint256(weight),
			WorkingBalance: utils.FromUint256(us.Working),
			LastClaimTime:  us.LastClaimTime,
		}
		if vote != nil {
			out.VoteBps = vote.Bps
		}
		if dv != nil {
			out.Direction = dv.Direction
		}
		return nil
	})
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &out)
}

func (g *Gauges) handleVote(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body BpsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := g.engine.Vote(req.Context(), body.Caller, addr, body.Bps); err != nil {
		return notFound(err)
	}
	return g.writeGauge(w, addr)
}

func (g *Gauges) handleUpdatePeriod(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	if err := g.engine.UpdatePeriod(req.Context(), addr); err != nil {
		return notFound(err)
	}
	return g.writeGauge(w, addr)
}

func (g *Gauges) handleDistribute(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	reward, err := g.engine.DistributeRewards(req.Context(), addr)
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &Reward{utils.FromUint256(reward)})
}

func (g *Gauges) handleToggleStatus(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	active, err := g.engine.ToggleGaugeStatus(req.Context(), body.Caller, addr)
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &Status{active})
}

func (g *Gauges) handleShutdown(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := g.engine.EmergencyShutdown(req.Context(), body.Caller, addr); err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &Status{false})
}

func (g *Gauges) handlePause(pause bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body CallerRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		var err error
		if pause {
			err = g.engine.EmergencyRevoke(req.Context(), body.Caller)
		} else {
			err = g.engine.Unpause(req.Context(), body.Caller)
		}
		if err != nil {
			return err
		}
		return g.handleGetRegistry(w, req)
	}
}

func (g *Gauges) handleSetTypeWeight(w http.ResponseWriter, req *http.Request) error {
	kind, err := gauge.ParseKind(mux.Vars(req)["kind"])
	if err != nil {
		return utils.NotFound(err)
	}
	var body BpsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := g.engine.SetTypeWeight(req.Context(), body.Caller, kind, body.Bps); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"kind": kind, "bps": body.Bps})
}

// accountOp runs a per account gauge operation and responds with the account position.
func (g *Gauges) accountOp(fn func(req *http.Request, account, addr ve.Address, amount *uint256.Int) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		addr, err := utils.AddressVar(req, "address")
		if err != nil {
			return err
		}
		account, err := utils.AddressVar(req, "account")
		if err != nil {
			return err
		}
		var body AmountRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		var amount *uint256.Int
		if body.Amount != nil {
			if amount, err = utils.Amount(body.Amount); err != nil {
				return utils.BadRequest(errors.WithMessage(err, "amount"))
			}
		}
		if !body.Caller.IsZero() && body.Caller != account {
			return utils.Forbidden(errors.New("caller is not the account"))
		}
		if err := fn(req, account, addr, amount); err != nil {
			return notFound(err)
		}
		return g.handleGetAccount(w, req)
	}
}

func (g *Gauges) handleClaim(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(req, "account")
	if err != nil {
		return err
	}
	reward, err := g.engine.ClaimReward(req.Context(), account, addr)
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, &Reward{utils.FromUint256(reward)})
}

func (g *Gauges) handleDirection(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(req, "account")
	if err != nil {
		return err
	}
	var body BpsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := g.engine.VoteDirection(req.Context(), account, addr, body.Bps); err != nil {
		return notFound(err)
	}
	return g.handleGetAccount(w, req)
}

func (g *Gauges) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /gauges").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetRegistry))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /gauges").
		HandlerFunc(utils.WrapHandlerFunc(g.handleAddGauge))
	sub.Path("/pause").
		Methods(http.MethodPost).
		Name("POST /gauges/pause").
		HandlerFunc(utils.WrapHandlerFunc(g.handlePause(true)))
	sub.Path("/unpause").
		Methods(http.MethodPost).
		Name("POST /gauges/unpause").
		HandlerFunc(utils.WrapHandlerFunc(g.handlePause(false)))
	sub.Path("/types/{kind}").
		Methods(http.MethodPost).
		Name("POST /gauges/types/{kind}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetTypeWeight))

	sub.Path("/" + addressPattern).
		Methods(http.MethodGet).
		Name("GET /gauges/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetGauge))
	sub.Path("/" + addressPattern + "/votes").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/votes").
		HandlerFunc(utils.WrapHandlerFunc(g.handleVote))
	sub.Path("/" + addressPattern + "/period").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/period").
		HandlerFunc(utils.WrapHandlerFunc(g.handleUpdatePeriod))
	sub.Path("/" + addressPattern + "/distribute").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/distribute").
		HandlerFunc(utils.WrapHandlerFunc(g.handleDistribute))
	sub.Path("/" + addressPattern + "/status").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/status").
		HandlerFunc(utils.WrapHandlerFunc(g.handleToggleStatus))
	sub.Path("/" + addressPattern + "/shutdown").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/shutdown").
		HandlerFunc(utils.WrapHandlerFunc(g.handleShutdown))

	account := "/" + addressPattern + "/accounts/{account:0x[0-9a-fA-F]{40}}"
	sub.Path(account).
		Methods(http.MethodGet).
		Name("GET /gauges/{address}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetAccount))
	sub.Path(account + "/stake").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/accounts/{account}/stake").
		HandlerFunc(utils.WrapHandlerFunc(g.accountOp(func(req *http.Request, account, addr ve.Address, amount *uint256.Int) error {
			return g.engine.Stake(req.Context(), account, addr, amount)
		})))
	sub.Path(account + "/unstake").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/accounts/{account}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(g.accountOp(func(req *http.Request, account, addr ve.Address, amount *uint256.Int) error {
			return g.engine.Unstake(req.Context(), account, addr, amount)
		})))
	sub.Path(account + "/checkpoint").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/accounts/{account}/checkpoint").
		HandlerFunc(utils.WrapHandlerFunc(g.accountOp(func(req *http.Request, account, addr ve.Address, _ *uint256.Int) error {
			return g.engine.CheckpointGauge(req.Context(), account, addr)
		})))
	sub.Path(account + "/claim").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/accounts/{account}/claim").
		HandlerFunc(utils.WrapHandlerFunc(g.handleClaim))
	sub.Path(account + "/direction").
		Methods(http.MethodPost).
		Name("POST /gauges/{address}/accounts/{account}/direction").
		HandlerFunc(utils.WrapHandlerFunc(g.handleDirection))
}
