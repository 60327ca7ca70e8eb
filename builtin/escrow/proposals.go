// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/ve"
)

func voteKey(proposalID ve.Bytes32, account ve.Address) ve.Bytes32 {
	return ve.Blake2b(proposalID.Bytes(), account.Bytes())
}

// SnapshotProposal records the current checkpoint index and supply for proposalID.
// Manager only.
func (e *Escrow) SnapshotProposal(caller ve.Address, proposalID ve.Bytes32) (*Snapshot, error) {
	if err := e.acl.Require(access.Manager, caller); err != nil {
		return nil, err
	}
	existing, err := e.proposals.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProposalExists
	}
	index, err := e.Clock()
	if err != nil {
		return nil, err
	}
	supply, err := e.GetPastTotalSupply(index)
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{Index: index, TotalSupply: supply}
	if err := e.proposals.Set(proposalID, snapshot); err != nil {
		return nil, err
	}
	logger.Debug("proposal snapshot", "proposal", proposalID, "index", index, "supply", supply)
	return snapshot, nil
}

// ProposalSnapshot returns the snapshot of proposalID.
func (e *Escrow) ProposalSnapshot(proposalID ve.Bytes32) (*Snapshot, error) {
	snapshot, err := e.proposals.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrProposalNotFound
	}
	return snapshot, nil
}

// ProposalPower returns the power of account as of the snapshot of proposalID.
func (e *Escrow) ProposalPower(account ve.Address, proposalID ve.Bytes32) (*uint256.Int, error) {
	snapshot, err := e.ProposalSnapshot(proposalID)
	if err != nil {
		return nil, err
	}
	return e.GetPastVotes(account, snapshot.Index)
}

// HasVoted reports whether account voted on proposalID.
func (e *Escrow) HasVoted(account ve.Address, proposalID ve.Bytes32) (bool, error) {
	return e.votes.Get(voteKey(proposalID, account))
}

// RecordVote marks account as voted on proposalID and returns its snapshot power.
// Manager only.
func (e *Escrow) RecordVote(caller, account ve.Address, proposalID ve.Bytes32) (*uint256.Int, error) {
	if err := e.acl.Require(access.Manager, caller); err != nil {
		return nil, err
	}
	power, err := e.ProposalPower(account, proposalID)
	if err != nil {
		return nil, err
	}
	voted, err := e.HasVoted(account, proposalID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted
	}
	if err := e.votes.Set(voteKey(proposalID, account), true); err != nil {
		return nil, err
	}
	logger.Debug("vote recorded", "proposal", proposalID, "account", account, "power", power)
	return power, nil
}
