// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/log"
)

func respond(status int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		w.Write([]byte(http.StatusText(status)))
	}
}

// records decodes every JSON line written to buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		log5xx    bool
		wantCode  int
		wantLevel string // empty when nothing is logged
	}{
		{"enabled logs every request", respond(http.StatusOK, 0), true, 0, false, http.StatusOK, "info"},
		{"disabled logs nothing", respond(http.StatusOK, 0), false, 0, false, http.StatusOK, ""},
		{"slow request over threshold", respond(http.StatusOK, 15*time.Millisecond), false, 10 * time.Millisecond, false, http.StatusOK, "info"},
		{"fast request under threshold", respond(http.StatusOK, 0), false, time.Second, false, http.StatusOK, ""},
		{"500 with 5xx logging", respond(http.StatusInternalServerError, 0), false, 0, true, http.StatusInternalServerError, "warn"},
		{"503 with 5xx logging", respond(http.StatusServiceUnavailable, 0), false, 0, true, http.StatusServiceUnavailable, "warn"},
		{"500 without 5xx logging", respond(http.StatusInternalServerError, 0), false, 0, false, http.StatusInternalServerError, ""},
		{"4xx is not a server error", respond(http.StatusBadRequest, 0), false, 0, true, http.StatusBadRequest, ""},
		{"slow 5xx is logged once as failure", respond(http.StatusInternalServerError, 15*time.Millisecond), true, 10 * time.Millisecond, true, http.StatusInternalServerError, "warn"},
		{"implicit 200 with 5xx logging", respond(http.StatusOK, 0), false, 0, true, http.StatusOK, ""},
	}

	const body = `{"caller":"0x0000000000000000000000000000000000000001","amount":"1000"}`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			logger := log.NewLogger(log.JSONHandler(&buf))
			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold, tt.log5xx)(tt.handler)

			req := httptest.NewRequest(http.MethodPost, "http://localhost/escrow/locks", strings.NewReader(body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)

			recs := records(t, &buf)
			if tt.wantLevel == "" {
				assert.Empty(t, recs)
				return
			}
			require.Len(t, recs, 1)
			rec := recs[0]
			assert.Equal(t, tt.wantLevel, rec["lvl"])
			assert.Equal(t, "http://localhost/escrow/locks", rec["URI"])
			assert.Equal(t, http.MethodPost, rec["Method"])
			assert.Equal(t, float64(tt.wantCode), rec["Status"])
			assert.Equal(t, body, rec["Body"])
			assert.IsType(t, float64(0), rec["Timestamp"])
			assert.IsType(t, float64(0), rec["DurationMs"])
		})
	}
}

func TestRequestLoggerRestoresBody(t *testing.T) {
	var buf bytes.Buffer
	var enabled atomic.Bool
	enabled.Store(true)

	var seen string
	handler := RequestLoggerMiddleware(log.NewLogger(log.JSONHandler(&buf)), &enabled, 0, false)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.WriteHeader(http.StatusCreated)
		}))

	req := httptest.NewRequest(http.MethodPost, "http://localhost/gauges", strings.NewReader(`{"kind":"rwa"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"kind":"rwa"}`, seen)
	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, float64(http.StatusCreated), recs[0]["Status"])
}

func TestRequestLoggerToggle(t *testing.T) {
	var buf bytes.Buffer
	var enabled atomic.Bool
	handler := RequestLoggerMiddleware(log.NewLogger(log.JSONHandler(&buf)), &enabled, 0, false)(respond(http.StatusOK, 0))

	get := func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://localhost/escrow/supply", nil))
	}
	get()
	enabled.Store(true)
	get()
	enabled.Store(false)
	get()

	assert.Len(t, records(t, &buf), 1)
}
