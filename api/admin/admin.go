// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/veboost/api/admin/loglevel"
	"github.com/vechain/veboost/api/utils"
	"github.com/vechain/veboost/engine"
)

// Status is the liveness report of the engine.
type Status struct {
	Now         uint64 `json:"now"`
	Clock       uint64 `json:"clock"`
	Paused      bool   `json:"paused"`
	GaugeCount  int    `json:"gaugeCount"`
	EmergencyOn bool   `json:"emergencyWithdraw"`
}

func handleStatus(e *engine.Engine) utils.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		status := Status{Now: e.Now()}
		err := e.View(func() (err error) {
			if status.Clock, err = e.Escrow().Clock(); err != nil {
				return err
			}
			if status.Paused, err = e.Registry().IsPaused(); err != nil {
				return err
			}
			gauges, err := e.Registry().Gauges()
			if err != nil {
				return err
			}
			status.GaugeCount = len(gauges)
			status.EmergencyOn, _, err = e.Escrow().EmergencyState()
			return err
		})
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, &status)
	}
}

func New(logLevel *slog.LevelVar, e *engine.Engine) http.HandlerFunc {
	router := mux.NewRouter()

	loglevel.New(logLevel).Mount(router, "/admin/loglevel")
	router.Path("/admin/status").
		Methods(http.MethodGet).
		Name("get-status").
		HandlerFunc(utils.WrapHandlerFunc(handleStatus(e)))

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
