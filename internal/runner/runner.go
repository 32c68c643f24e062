package runner

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	eos "github.com/eoscanada/eos-go"

	"wax-miner-go/internal/assets"
	"wax-miner-go/internal/chain"
	"wax-miner-go/internal/config"
	"wax-miner-go/internal/cooldown"
	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/history"
	"wax-miner-go/internal/logging"
	"wax-miner-go/internal/metrics"
	"wax-miner-go/internal/submit"
)

// ChainReader fetches account game state.
type ChainReader interface {
	MinerRow(ctx context.Context, account string) (*chain.MinerRow, error)
}

// AssetResolver resolves asset metadata.
type AssetResolver interface {
	Asset(ctx context.Context, assetID string) (*assets.Asset, error)
	Delays(ctx context.Context, assetIDs []string) ([]float64, []string, error)
}

// TxSubmitter broadcasts signed transactions.
type TxSubmitter interface {
	Submit(ctx context.Context, privateKeys []string, actions []*eos.Action) (txID, endpoint string, err error)
	DryRun() bool
}

// Ledger records attempt outcomes. May be a no-op.
type Ledger interface {
	Record(ctx context.Context, a history.Attempt) error
}

type noopLedger struct{}

func (noopLedger) Record(context.Context, history.Attempt) error { return nil }

// AccountStatus is the last observed outcome for one account, exposed on
// the admin surface.
type AccountStatus struct {
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	TxID      string    `json:"tx_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Runner walks all configured accounts, strictly one at a time, and mines
// for whichever of them is off cooldown. No failure inside a cycle may stop
// the scheduling loop.
type Runner struct {
	cfg        *config.Config
	chainPool  *endpoints.Pool
	atomicPool *endpoints.Pool
	chain      ChainReader
	assets     AssetResolver
	submitter  TxSubmitter
	ledger     Ledger
	report     *reporter

	rngMu sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time

	running atomic.Bool
	cycles  sync.WaitGroup

	mu           sync.RWMutex
	lastCycle    time.Time
	statusByAcct map[string]AccountStatus
}

// New wires a runner. ledger may be nil.
func New(cfg *config.Config, chainPool, atomicPool *endpoints.Pool,
	chainReader ChainReader, assetReader AssetResolver, submitter TxSubmitter,
	ledger Ledger, console io.Writer) *Runner {

	if ledger == nil {
		ledger = noopLedger{}
	}
	return &Runner{
		cfg:          cfg,
		chainPool:    chainPool,
		atomicPool:   atomicPool,
		chain:        chainReader,
		assets:       assetReader,
		submitter:    submitter,
		ledger:       ledger,
		report:       newReporter(console),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:        sleepCtx,
		now:          time.Now,
		statusByAcct: make(map[string]AccountStatus),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run drives cycles on a fixed wall-clock interval until ctx is canceled.
// One cycle starts immediately. By default a tick that arrives while the
// previous cycle is still running is skipped; OVERLAP_CYCLES restores the
// legacy fire-and-forget behavior. On cancellation Run returns only once
// every in-flight cycle has finished.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("runner_started",
		slog.Int("accounts", len(r.cfg.Accounts)),
		slog.Duration("interval", r.cfg.Interval),
		slog.Bool("dry_run", r.submitter.DryRun()),
		slog.Bool("overlap_cycles", r.cfg.OverlapCycles),
	)

	r.tick(ctx)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Let the in-flight cycle write its final outcomes before the
			// caller tears down the ledger.
			r.cycles.Wait()
			slog.Info("runner_stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if r.cfg.OverlapCycles {
		// Legacy mode: re-trigger regardless of the previous pass.
		r.cycles.Add(1)
		go func() {
			defer r.cycles.Done()
			r.RunCycle(ctx)
		}()
		return
	}
	if !r.running.CompareAndSwap(false, true) {
		metrics.Get().CyclesSkipped.Inc()
		slog.Warn("cycle_skipped", slog.String("reason", "previous cycle still running"))
		return
	}
	r.cycles.Add(1)
	go func() {
		defer r.cycles.Done()
		defer r.running.Store(false)
		r.RunCycle(ctx)
	}()
}

// RunCycle performs one full account pass: reshuffle both endpoint pools,
// then evaluate every account sequentially.
func (r *Runner) RunCycle(ctx context.Context) {
	m := metrics.Get()
	m.CyclesTotal.Inc()
	start := r.now()

	r.chainPool.Shuffle()
	r.atomicPool.Shuffle()

	for _, acct := range r.cfg.Accounts {
		if ctx.Err() != nil {
			return
		}
		r.processAccount(ctx, acct)
	}

	m.CycleDuration.Observe(time.Since(start).Seconds())
	r.mu.Lock()
	r.lastCycle = start
	r.mu.Unlock()
}

// processAccount absorbs every per-account failure; nothing escapes to the
// cycle loop.
func (r *Runner) processAccount(ctx context.Context, acct config.Account) {
	m := metrics.Get()
	m.AccountsChecked.Inc()

	row, err := r.chain.MinerRow(ctx, acct.Name)
	if err != nil {
		// Only context cancellation reaches here; the cycle is ending anyway.
		return
	}
	if row == nil {
		m.AccountsNotFound.Inc()
		r.report.notFound(acct.Name)
		r.setStatus(acct.Name, AccountStatus{Outcome: history.OutcomeNotFound, UpdatedAt: r.now()})
		r.record(ctx, history.Attempt{Account: acct.Name, Outcome: history.OutcomeNotFound})
		return
	}

	landDelay := 0.0
	if row.Land != "" {
		land, err := r.assets.Asset(ctx, row.Land)
		if err != nil {
			return
		}
		if land == nil {
			r.skip(ctx, acct.Name, "land metadata unavailable")
			return
		}
		landDelay = land.Data.Delay
	}

	toolDelays, missing, err := r.assets.Delays(ctx, row.Tools())
	if err != nil {
		return
	}
	if len(missing) > 0 {
		// Without every tool delay the cooldown math cannot be trusted;
		// mining early just burns CPU on a guaranteed rejection.
		r.skip(ctx, acct.Name, "tool metadata unavailable")
		return
	}

	verdict := cooldown.Evaluate(r.now(), row.LastMineTime(), landDelay, toolDelays)
	if !verdict.Eligible {
		m.CooldownSkips.Inc()
		remaining := FormatRemaining(verdict.Remaining)
		r.report.cooldown(acct.Name, verdict.Remaining)
		slog.Info("cooldown_active",
			slog.String("account", acct.Name),
			slog.Time("next_available", verdict.NextAvailable),
			slog.String("remaining", remaining),
		)
		r.setStatus(acct.Name, AccountStatus{Outcome: history.OutcomeCooldown, Detail: remaining, UpdatedAt: r.now()})
		r.record(ctx, history.Attempt{Account: acct.Name, Outcome: history.OutcomeCooldown, Detail: remaining})
		return
	}

	// Human-like jitter before acting.
	if wait := r.submitDelay(); wait > 0 {
		slog.Debug("pre_submit_delay", slog.String("account", acct.Name), slog.Duration("wait", wait))
		r.sleep(ctx, wait)
		if ctx.Err() != nil {
			return
		}
	}

	action := submit.MineAction(r.cfg.MineContract, r.cfg.MineAction, acct.Name, r.cfg.MinePermission)
	txID, endpoint, err := r.submitter.Submit(ctx, []string{acct.PrivateKey}, []*eos.Action{action})
	switch {
	case err != nil:
		m.MinesFailed.Inc()
		logging.MineFailed(acct.Name, err)
		r.report.failed(acct.Name, err)
		r.setStatus(acct.Name, AccountStatus{Outcome: history.OutcomeError, Detail: err.Error(), UpdatedAt: r.now()})
		r.record(ctx, history.Attempt{Account: acct.Name, Outcome: history.OutcomeError, Detail: err.Error()})
	case r.submitter.DryRun():
		r.report.dryRun(acct.Name)
		slog.Info("mine_dry_run", slog.String("account", acct.Name))
		r.setStatus(acct.Name, AccountStatus{Outcome: history.OutcomeDryRun, UpdatedAt: r.now()})
		r.record(ctx, history.Attempt{Account: acct.Name, Outcome: history.OutcomeDryRun})
	default:
		m.MinesSubmitted.Inc()
		logging.MineSubmitted(acct.Name, txID, endpoint)
		r.report.mined(acct.Name, txID)
		r.setStatus(acct.Name, AccountStatus{Outcome: history.OutcomeMined, TxID: txID, UpdatedAt: r.now()})
		r.record(ctx, history.Attempt{Account: acct.Name, Outcome: history.OutcomeMined, TxID: txID})
	}
}

func (r *Runner) skip(ctx context.Context, account, reason string) {
	r.report.skipped(account, reason)
	slog.Warn("account_skipped", slog.String("account", account), slog.String("reason", reason))
	r.setStatus(account, AccountStatus{Outcome: history.OutcomeError, Detail: reason, UpdatedAt: r.now()})
	r.record(ctx, history.Attempt{Account: account, Outcome: history.OutcomeError, Detail: reason})
}

func (r *Runner) record(ctx context.Context, a history.Attempt) {
	if err := r.ledger.Record(ctx, a); err != nil {
		slog.Warn("history_record_failed", slog.String("error", err.Error()))
	}
}

func (r *Runner) setStatus(account string, s AccountStatus) {
	r.mu.Lock()
	r.statusByAcct[account] = s
	r.mu.Unlock()
}

// Status returns the last cycle start and a copy of per-account outcomes.
func (r *Runner) Status() (time.Time, map[string]AccountStatus) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]AccountStatus, len(r.statusByAcct))
	for k, v := range r.statusByAcct {
		out[k] = v
	}
	return r.lastCycle, out
}

// submitDelay samples a uniform wait inside the configured window. The rng is
// shared across overlapping cycles and needs the lock.
func (r *Runner) submitDelay() time.Duration {
	min, max := r.cfg.DelayMin, r.cfg.DelayMax
	if max <= min {
		return min
	}
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return min + time.Duration(r.rng.Int63n(int64(max-min)+1))
}
