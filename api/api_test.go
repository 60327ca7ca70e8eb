// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/api/gauges"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/metrics"
	"github.com/vechain/veboost/ve"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

var adminAddr = ve.BytesToAddress([]byte("admin"))

func newEngine(t *testing.T) *engine.Engine {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := engine.DefaultConfig()
	cfg.Admin = adminAddr
	e, err := engine.New(db, cfg, engine.WithClock(func() uint64 { return 1_700_000_000 }))
	require.NoError(t, err)
	return e
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	return r, res.StatusCode
}

func TestRouteName(t *testing.T) {
	router := mux.NewRouter()
	var got string
	router.Path("/gauges/{address}/accounts/{account}/stake").
		Name("POST /gauges/{address}/accounts/{account}/stake").
		HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = routeName(r) })
	router.Path("/bare").HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = routeName(r) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/gauges/0x01/accounts/0x02/stake", nil))
	assert.Equal(t, "gauges_post_address_accounts_account_stake", got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bare", nil))
	assert.Equal(t, "unknown", got)
}

func TestMetricsMiddleware(t *testing.T) {
	e := newEngine(t)

	router := mux.NewRouter()
	gauges.New(e).Mount(router, "/gauges")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	defer ts.Close()

	httpGet(t, ts.URL+"/gauges")
	_, code := httpGet(t, ts.URL+"/gauges/"+adminAddr.String())
	assert.Equal(t, http.StatusNotFound, code)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	m := families["veboost_api_request_count"].GetMetric()
	require.Equal(t, 2, len(m))

	labels := m[0].GetLabel()
	assert.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "200", labels[0].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "gauges_get", labels[2].GetValue())

	labels = m[1].GetLabel()
	assert.Equal(t, "404", labels[0].GetValue())
	assert.Equal(t, "gauges_get_address", labels[2].GetValue())
}

func TestNew(t *testing.T) {
	e := newEngine(t)
	ts := httptest.NewServer(New(e, Options{AllowedOrigins: "*", EnableMetrics: true}))
	defer ts.Close()

	body, code := httpGet(t, ts.URL+"/gauges")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"paused":false`)

	_, code = httpGet(t, ts.URL+"/escrow/supply")
	assert.Equal(t, http.StatusOK, code)

	_, code = httpGet(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/gauges", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestStartAdminServer(t *testing.T) {
	e := newEngine(t)
	var level slog.LevelVar

	url, closeFn, err := StartAdminServer("localhost:0", &level, e)
	require.NoError(t, err)
	defer closeFn()

	body, code := httpGet(t, url+"/status")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(string(body), `"gaugeCount":0`))
}
