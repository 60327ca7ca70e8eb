// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/ve"
)

var simAdmin = ve.BytesToAddress([]byte("admin"))

func newTestSimulator(t *testing.T, out *bytes.Buffer) *simulator {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := engine.DefaultConfig()
	cfg.Admin = simAdmin
	sim, err := newSimulator(db, cfg, 1_700_000_000, out)
	require.NoError(t, err)
	return sim
}

func TestLoadScenario(t *testing.T) {
	sc, err := loadScenario("testdata/reward_flow.yaml")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), sc.Start)
	assert.Equal(t, gauge.RAAC, sc.Steps[5].Kind)
	assert.Equal(t, ve.BytesToAddress([]byte("gauge1")), sc.Steps[5].Gauge)
	assert.Equal(t, "unauthorized", sc.Steps[4].Expect)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("start: 1\n"), 0o600))
	_, err = loadScenario(empty)
	assert.Error(t, err)

	_, err = loadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSimulateRewardFlow(t *testing.T) {
	sc, err := loadScenario("testdata/reward_flow.yaml")
	require.NoError(t, err)

	var out bytes.Buffer
	sim := newTestSimulator(t, &out)
	require.NoError(t, sim.run(context.Background(), sc.Steps))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(sc.Steps))
	assert.Contains(t, lines[2], "reverted: lock already exists")
	assert.Contains(t, lines[8], "reverted: rewards already distributed this period")
	assert.Contains(t, lines[11], "claim")
	assert.NotContains(t, lines[11], "reverted")
	assert.Equal(t, sc.Start+1+86400+60+604800, sim.clock.Now())
}

func TestSimulateExpectations(t *testing.T) {
	alice := ve.BytesToAddress([]byte("alice"))
	tests := []struct {
		name  string
		steps []Step
		err   string
	}{
		{
			name:  "unexpected failure",
			steps: []Step{{Op: "create_lock", Caller: alice, Amount: 1, Duration: ve.MaxLockDuration}},
			err:   "step 0 (create_lock)",
		},
		{
			name:  "missing failure",
			steps: []Step{{Op: "mint", Caller: simAdmin, Account: alice, Amount: 1, Expect: "unauthorized"}},
			err:   `expected error "unauthorized"`,
		},
		{
			name:  "wrong failure",
			steps: []Step{{Op: "mint", Caller: alice, Account: alice, Amount: 1, Expect: "lock"}},
			err:   "got unauthorized",
		},
		{
			name:  "unknown op",
			steps: []Step{{Op: "teleport"}},
			err:   `unknown op "teleport"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulator(t, &bytes.Buffer{})
			err := sim.run(context.Background(), tt.steps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}
