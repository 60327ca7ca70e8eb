// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/veboost/api"
	"github.com/vechain/veboost/engine"
	"github.com/vechain/veboost/keeper"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/metrics"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "veboost",
		Usage:     "Vote escrow, boost and gauge reward engine",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			adminFlag,
			cacheFlag,
			stateCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			pprofFlag,
			keeperIntervalFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: serveAction,
		Commands: []cli.Command{
			{
				Name:  "simulate",
				Usage: "replay a scenario against an in-memory engine",
				Flags: []cli.Flag{
					configFlag,
					adminFlag,
					scenarioFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: simulateAction,
			},
			{
				Name:  "config",
				Usage: "print the effective engine config",
				Flags: []cli.Flag{
					configFlag,
					adminFlag,
				},
				Action: configAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveAction(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(nil, lvl, ctx.Bool(jsonLogsFlag.Name))
	defer func() { log.Info("exited") }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	mainDB, dbPath, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	e, err := engine.New(mainDB, cfg, engine.WithCacheSize(ctx.Int(stateCacheFlag.Name)))
	if err != nil {
		return err
	}

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler := api.New(e, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
	})
	apiURL, apiClose, err := startAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); apiClose() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, e)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(cfg, dbPath, apiURL, metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(handleExitSignal())
	if interval := ctx.Duration(keeperIntervalFlag.Name); interval > 0 {
		group.Go(func() error {
			keeper.New(e, interval).Run(groupCtx)
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}

func configAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
