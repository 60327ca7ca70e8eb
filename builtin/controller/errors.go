// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package controller

import (
	"github.com/vechain/veboost/builtin/reverts"
)

var (
	ErrGaugeAlreadyExists = reverts.New("gauge already exists")
	ErrGaugeNotFound      = reverts.New("gauge not found")
	ErrGaugeNotActive     = reverts.New("gauge not active")
	ErrInvalidWeight      = reverts.New("invalid weight")
	ErrNoVotingPower      = reverts.New("no voting power")
	ErrInvalidAddress     = reverts.New("invalid address")
	ErrPaused             = reverts.New("registry paused")
	ErrNotPaused          = reverts.New("registry not paused")
	ErrAlreadyDistributed = reverts.New("rewards already distributed this period")
)
