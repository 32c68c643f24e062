package chain

import (
	"context"
	"sync"
	"time"

	eos "github.com/eoscanada/eos-go"
	"golang.org/x/time/rate"

	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/logging"
	"wax-miner-go/internal/metrics"
)

// TableSpec locates the mine contract's account table.
type TableSpec struct {
	Code  string
	Scope string
	Table string
}

// Reader fetches table rows with sequential failover across the endpoint
// pool. Each attempt gets its own bounded timeout; an error, a timeout or an
// empty row set advances to the next mirror. Exhaustion yields an empty
// result, not an error: callers must treat "no data" as a legitimate
// terminal outcome.
type Reader struct {
	pool    *endpoints.Pool
	spec    TableSpec
	timeout time.Duration
	limiter *rate.Limiter
	factory APIFactory

	mu      sync.Mutex
	clients map[string]API
}

// NewReader builds a reader over the given pool. timeout bounds each
// per-endpoint attempt.
func NewReader(pool *endpoints.Pool, spec TableSpec, timeout time.Duration) *Reader {
	return &Reader{
		pool:    pool,
		spec:    spec,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		factory: DefaultFactory,
		clients: make(map[string]API),
	}
}

// SetFactory swaps the client constructor. Tests inject fakes here.
func (r *Reader) SetFactory(f APIFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = f
	r.clients = make(map[string]API)
}

func (r *Reader) client(url string) API {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[url]; ok {
		return c
	}
	c := r.factory(url)
	r.clients[url] = c
	return c
}

// MinerRow fetches the account's game row. A nil row with a nil error means
// the account was not found on any mirror this cycle.
func (r *Reader) MinerRow(ctx context.Context, account string) (*MinerRow, error) {
	m := metrics.Get()

	var lastErr error
	urls := r.pool.Ordered()
	for attempt, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		m.RPCRequestsTotal.WithLabelValues(url, "get_table_rows").Inc()

		reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
		resp, err := r.client(url).GetTableRows(reqCtx, eos.GetTableRowsRequest{
			Code:       r.spec.Code,
			Scope:      r.spec.Scope,
			Table:      r.spec.Table,
			LowerBound: account,
			UpperBound: account,
			Limit:      1,
			JSON:       true,
		})
		cancel()

		if err != nil {
			m.RPCRequestsFailed.WithLabelValues(url, "get_table_rows").Inc()
			logging.EndpointFailed("get_table_rows", url, attempt+1, err)
			lastErr = err
			continue
		}

		var rows []MinerRow
		if err := resp.JSONToStructs(&rows); err != nil {
			m.RPCRequestsFailed.WithLabelValues(url, "get_table_rows").Inc()
			logging.EndpointFailed("get_table_rows", url, attempt+1, err)
			lastErr = err
			continue
		}
		if len(rows) == 0 {
			// No usable payload from this mirror; the next one may lag less.
			lastErr = nil
			continue
		}
		return &rows[0], nil
	}

	m.FailoverExhausted.WithLabelValues("get_table_rows").Inc()
	logging.FailoverExhausted("get_table_rows", len(urls), lastErr)
	return nil, nil
}
