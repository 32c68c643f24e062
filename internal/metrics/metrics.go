package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the miner daemon.
type Metrics struct {
	// Cycle metrics
	CyclesTotal     prometheus.Counter
	CyclesSkipped   prometheus.Counter
	CycleDuration   prometheus.Histogram
	AccountsChecked prometheus.Counter

	// Outcome metrics
	MinesSubmitted   prometheus.Counter
	MinesFailed      prometheus.Counter
	CooldownSkips    prometheus.Counter
	AccountsNotFound prometheus.Counter

	// Endpoint metrics
	RPCRequestsTotal  *prometheus.CounterVec
	RPCRequestsFailed *prometheus.CounterVec
	FailoverExhausted *prometheus.CounterVec

	// Asset cache metrics
	AssetCacheHits   prometheus.Counter
	AssetCacheMisses prometheus.Counter

	StartTime prometheus.Gauge
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// Get returns the singleton Metrics instance.
func Get() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_cycles_total",
			Help: "Total number of mining cycles started",
		}),
		CyclesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_cycles_skipped_total",
			Help: "Total number of ticks skipped because the previous cycle was still running",
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "miner_cycle_duration_seconds",
			Help:    "Time taken to process one full account pass",
			Buckets: prometheus.DefBuckets,
		}),
		AccountsChecked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_accounts_checked_total",
			Help: "Total number of per-account evaluations",
		}),

		MinesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_mines_submitted_total",
			Help: "Total number of mine transactions successfully broadcast",
		}),
		MinesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_mines_failed_total",
			Help: "Total number of mine transactions that failed to sign or broadcast",
		}),
		CooldownSkips: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_cooldown_skips_total",
			Help: "Total number of evaluations ending in an active cooldown",
		}),
		AccountsNotFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_accounts_not_found_total",
			Help: "Total number of evaluations where the account row was absent on-chain",
		}),

		RPCRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_rpc_requests_total",
			Help: "Total number of outbound requests by endpoint and call",
		}, []string{"endpoint", "call"}),
		RPCRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_rpc_requests_failed_total",
			Help: "Total number of failed outbound requests by endpoint and call",
		}, []string{"endpoint", "call"}),
		FailoverExhausted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "miner_failover_exhausted_total",
			Help: "Total number of reads that failed on every configured mirror",
		}, []string{"call"}),

		AssetCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_asset_cache_hits_total",
			Help: "Total number of asset lookups served from the on-disk cache",
		}),
		AssetCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "miner_asset_cache_misses_total",
			Help: "Total number of asset lookups that went to the network",
		}),

		StartTime: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "miner_start_time_seconds",
			Help: "Unix timestamp when the daemon started",
		}),
	}
}
