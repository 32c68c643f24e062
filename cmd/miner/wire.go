package main

import (
	"log/slog"
	"os"
	"time"

	"wax-miner-go/internal/admin"
	"wax-miner-go/internal/assets"
	"wax-miner-go/internal/chain"
	"wax-miner-go/internal/config"
	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/history"
	"wax-miner-go/internal/runner"
	"wax-miner-go/internal/submit"
)

// submitTimeout bounds the whole get_info/sign/broadcast sequence; it is
// deliberately wider than the per-read timeout because a broadcast is not
// retried.
const submitTimeout = 30 * time.Second

type app struct {
	cfg    *config.Config
	runner *runner.Runner
	admin  *admin.Server
	ledger *history.Store
}

func (a *app) close() {
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			slog.Warn("history_close_failed", slog.String("error", err.Error()))
		}
	}
}

// buildApp assembles the daemon from configuration.
func buildApp(cfg *config.Config) *app {
	chainPool := endpoints.New(cfg.ChainEndpoints)
	atomicPool := endpoints.New(cfg.AtomicEndpoints)

	chainReader := chain.NewReader(chainPool, chain.TableSpec{
		Code:  cfg.MineContract,
		Scope: cfg.MineScope,
		Table: cfg.MineTable,
	}, cfg.RPCTimeout)

	cache := assets.NewCache(cfg.AssetCacheDir, cfg.AssetCacheTTL)
	assetReader := assets.NewReader(atomicPool, cache, cfg.RPCTimeout)

	submitter := submit.New(chainPool, submitTimeout, cfg.DryRun)

	var (
		ledger     *history.Store
		ledgerSink runner.Ledger
		histSource admin.HistorySource
	)
	if cfg.HistoryDB != "" {
		var err error
		ledger, err = history.Open(cfg.HistoryDB)
		if err != nil {
			// The ledger is an operator convenience; mining continues without it.
			slog.Warn("history_disabled", slog.String("error", err.Error()))
		} else {
			ledgerSink = ledger
			histSource = ledger
		}
	}

	run := runner.New(cfg, chainPool, atomicPool, chainReader, assetReader,
		submitter, ledgerSink, os.Stdout)

	return &app{
		cfg:    cfg,
		runner: run,
		admin:  admin.New(run, histSource),
		ledger: ledger,
	}
}
