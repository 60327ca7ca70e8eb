// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/veboost/api/utils"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/ve"
)

type Escrow struct {
	engine *engine.Engine
}

func New(e *engine.Engine) *Escrow {
	return &Escrow{e}
}

func parseProposal(req *http.Request) (ve.Bytes32, error) {
	id, err := ve.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return ve.Bytes32{}, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (e *Escrow) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var pos Position
	err = e.engine.View(func() error {
		esc := e.engine.Escrow()
		p, err := esc.GetLockPosition(addr, e.engine.Now())
		if err != nil {
			return err
		}
		balance, err := esc.BalanceOf(addr)
		if err != nil {
			return err
		}
		checkpoints, err := esc.CheckpointCount(addr)
		if err != nil {
			return err
		}
		pos = Position{
			Amount:      utils.FromUint256(p.Amount),
			End:         p.End,
			Power:       utils.FromUint256(p.Power),
			Balance:     utils.FromUint256(balance),
			Checkpoints: checkpoints,
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, pos)
}

func (e *Escrow) handleGetPower(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	at, err := utils.Uint64Query(req, "at", 0)
	if err != nil {
		return err
	}
	var power *uint256.Int
	err = e.engine.View(func() (err error) {
		if at == 0 {
			power, err = e.engine.Escrow().GetVotingPower(addr, e.engine.Now())
		} else {
			power, err = e.engine.Escrow().GetVotingPowerAt(addr, at)
		}
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Power{utils.FromUint256(power)})
}

func (e *Escrow) handleGetPastVotes(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	index, err := utils.Uint64Query(req, "index", 0)
	if err != nil {
		return err
	}
	var power *uint256.Int
	err = e.engine.View(func() (err error) {
		power, err = e.engine.Escrow().GetPastVotes(addr, index)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Power{utils.FromUint256(power)})
}

func (e *Escrow) handleGetSupply(w http.ResponseWriter, req *http.Request) error {
	var supply Supply
	err := e.engine.View(func() error {
		esc := e.engine.Escrow()
		locked, err := esc.TotalLocked()
		if err != nil {
			return err
		}
		index, err := utils.Uint64Query(req, "index", 0)
		if err != nil {
			return err
		}
		var power *uint256.Int
		if index == 0 {
			power, err = esc.GetTotalVotingPower()
		} else {
			power, err = esc.GetPastTotalSupply(index)
		}
		if err != nil {
			return err
		}
		clock, err := esc.Clock()
		if err != nil {
			return err
		}
		supply = Supply{utils.FromUint256(locked), utils.FromUint256(power), clock}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, supply)
}

func (e *Escrow) handleCreateLock(w http.ResponseWriter, req *http.Request) error {
	var body LockRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.Amount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := e.engine.CreateLock(req.Context(), body.Caller, amount, body.Duration); err != nil {
		return err
	}
	return e.writePosition(w, body.Caller)
}

func (e *Escrow) handleIncreaseLock(w http.ResponseWriter, req *http.Request) error {
	var body LockRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.Amount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := e.engine.IncreaseLock(req.Context(), body.Caller, amount); err != nil {
		return err
	}
	return e.writePosition(w, body.Caller)
}

func (e *Escrow) handleExtendLock(w http.ResponseWriter, req *http.Request) error {
	var body ExtendRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.engine.ExtendLock(req.Context(), body.Caller, body.Duration); err != nil {
		return err
	}
	return e.writePosition(w, body.Caller)
}

func (e *Escrow) writePosition(w http.ResponseWriter, account ve.Address) error {
	var p *escrow.Position
	err := e.engine.View(func() (err error) {
		p, err = e.engine.Escrow().GetLockPosition(account, e.engine.Now())
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Position{
		Amount: utils.FromUint256(p.Amount),
		End:    p.End,
		Power:  utils.FromUint256(p.Power),
	})
}

func (e *Escrow) handleWithdraw(emergency bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body CallerRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		var (
			amount *uint256.Int
			err    error
		)
		if emergency {
			amount, err = e.engine.EmergencyWithdraw(req.Context(), body.Caller)
		} else {
			amount, err = e.engine.Withdraw(req.Context(), body.Caller)
		}
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, Withdrawal{utils.FromUint256(amount)})
	}
}

func (e *Escrow) handleSetLockDurations(w http.ResponseWriter, req *http.Request) error {
	var body DurationsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.engine.SetLockDurations(req.Context(), body.Caller, body.MinDuration, body.MaxDuration); err != nil {
		return err
	}
	return utils.WriteJSON(w, &body)
}

func (e *Escrow) handleGetEmergency(w http.ResponseWriter, _ *http.Request) error {
	out := Emergency{Scheduled: make(map[string]uint64), Executable: make(map[string]uint64)}
	err := e.engine.View(func() (err error) {
		esc := e.engine.Escrow()
		if out.WithdrawEnabled, out.Unlocked, err = esc.EmergencyState(); err != nil {
			return err
		}
		for _, action := range []escrow.Action{escrow.ActionEnableEmergencyWithdraw, escrow.ActionEmergencyUnlock} {
			at, err := esc.EmergencyActionTime(action)
			if err != nil {
				return err
			}
			if at != 0 {
				out.Scheduled[string(action)] = at
				out.Executable[string(action)] = at + esc.EmergencyDelay()
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (e *Escrow) handleEmergencyAction(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	action := escrow.Action(mux.Vars(req)["action"])
	ctx := req.Context()

	var err error
	switch mux.Vars(req)["op"] {
	case "schedule":
		err = e.engine.ScheduleEmergencyAction(ctx, body.Caller, action)
	case "cancel":
		err = e.engine.CancelEmergencyAction(ctx, body.Caller, action)
	case "execute":
		switch action {
		case escrow.ActionEnableEmergencyWithdraw:
			err = e.engine.EnableEmergencyWithdraw(ctx, body.Caller)
		case escrow.ActionEmergencyUnlock:
			err = e.engine.EmergencyUnlock(ctx, body.Caller)
		default:
			err = escrow.ErrUnknownAction
		}
	default:
		return utils.NotFound(errors.New("unknown operation"))
	}
	if err != nil {
		return err
	}
	return e.handleGetEmergency(w, req)
}

func (e *Escrow) handleDisableEmergencyWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.engine.DisableEmergencyWithdraw(req.Context(), body.Caller); err != nil {
		return err
	}
	return e.handleGetEmergency(w, req)
}

func (e *Escrow) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := parseProposal(req)
	if err != nil {
		return err
	}
	var snap *escrow.Snapshot
	err = e.engine.View(func() (err error) {
		snap, err = e.engine.Escrow().ProposalSnapshot(id)
		return
	})
	if err != nil {
		if errors.Is(err, escrow.ErrProposalNotFound) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, Snapshot{snap.Index, utils.FromUint256(snap.TotalSupply)})
}

func (e *Escrow) handleSnapshotProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := parseProposal(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	snap, err := e.engine.SnapshotProposal(req.Context(), body.Caller, id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Snapshot{snap.Index, utils.FromUint256(snap.TotalSupply)})
}

func (e *Escrow) handleRecordVote(w http.ResponseWriter, req *http.Request) error {
	id, err := parseProposal(req)
	if err != nil {
		return err
	}
	var body VoteRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	power, err := e.engine.RecordVote(req.Context(), body.Caller, body.Account, id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Power{utils.FromUint256(power)})
}

func (e *Escrow) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("GET /escrow/supply").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetSupply))
	sub.Path("/locks").
		Methods(http.MethodPost).
		Name("POST /escrow/locks").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCreateLock))
	sub.Path("/locks/increase").
		Methods(http.MethodPost).
		Name("POST /escrow/locks/increase").
		HandlerFunc(utils.WrapHandlerFunc(e.handleIncreaseLock))
	sub.Path("/locks/extend").
		Methods(http.MethodPost).
		Name("POST /escrow/locks/extend").
		HandlerFunc(utils.WrapHandlerFunc(e.handleExtendLock))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /escrow/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(e.handleWithdraw(false)))
	sub.Path("/emergency-withdraw").
		Methods(http.MethodPost).
		Name("POST /escrow/emergency-withdraw").
		HandlerFunc(utils.WrapHandlerFunc(e.handleWithdraw(true)))
	sub.Path("/durations").
		Methods(http.MethodPost).
		Name("POST /escrow/durations").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSetLockDurations))
	sub.Path("/emergency").
		Methods(http.MethodGet).
		Name("GET /escrow/emergency").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetEmergency))
	sub.Path("/emergency/disable-withdraw").
		Methods(http.MethodPost).
		Name("POST /escrow/emergency/disable-withdraw").
		HandlerFunc(utils.WrapHandlerFunc(e.handleDisableEmergencyWithdraw))
	sub.Path("/emergency/{action}/{op}").
		Methods(http.MethodPost).
		Name("POST /escrow/emergency/{action}/{op}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleEmergencyAction))
	sub.Path("/proposals/{id}").
		Methods(http.MethodGet).
		Name("GET /escrow/proposals/{id}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetProposal))
	sub.Path("/proposals/{id}/snapshot").
		Methods(http.MethodPost).
		Name("POST /escrow/proposals/{id}/snapshot").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSnapshotProposal))
	sub.Path("/proposals/{id}/votes").
		Methods(http.MethodPost).
		Name("POST /escrow/proposals/{id}/votes").
		HandlerFunc(utils.WrapHandlerFunc(e.handleRecordVote))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /escrow/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetPosition))
	sub.Path("/accounts/{address}/power").
		Methods(http.MethodGet).
		Name("GET /escrow/accounts/{address}/power").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetPower))
	sub.Path("/accounts/{address}/past-votes").
		Methods(http.MethodGet).
		Name("GET /escrow/accounts/{address}/past-votes").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetPastVotes))
}
