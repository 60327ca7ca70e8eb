// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/ve"
)

func TestAdmin(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	admin := ve.BytesToAddress([]byte("admin"))
	cfg := engine.DefaultConfig()
	cfg.Admin = admin
	e, err := engine.New(db, cfg, engine.WithClock(func() uint64 { return 1_700_000_000 }))
	require.NoError(t, err)
	require.NoError(t, e.AddGauge(context.Background(), admin, ve.BytesToAddress([]byte("g")), gauge.RWA, nil))

	var level slog.LevelVar
	ts := httptest.NewServer(New(&level, e))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/admin/status")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var status Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	assert.Equal(t, uint64(1_700_000_000), status.Now)
	assert.Equal(t, 1, status.GaugeCount)
	assert.False(t, status.Paused)

	res, err = http.Post(ts.URL+"/admin/loglevel", "application/json", strings.NewReader(`{"level":"warn"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, slog.LevelWarn, level.Level())
}
