package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/logging"
	"wax-miner-go/internal/metrics"
)

// Asset is the immutable metadata of one on-chain item (land plot or tool).
type Asset struct {
	AssetID string     `json:"asset_id"`
	Data    Attributes `json:"data"`
}

// Attributes carries the minted attributes the cooldown math depends on.
type Attributes struct {
	Name  string  `json:"name,omitempty"`
	Delay float64 `json:"delay"`
}

// envelope is the AtomicAssets REST response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Reader resolves asset metadata cache-first, then with sequential failover
// across the AtomicAssets mirrors. A cache hit short-circuits the network
// entirely; a network success is persisted before being returned.
type Reader struct {
	pool    *endpoints.Pool
	cache   *Cache
	client  *http.Client
	timeout time.Duration
}

// NewReader builds a reader over the given mirror pool and cache.
func NewReader(pool *endpoints.Pool, cache *Cache, timeout time.Duration) *Reader {
	return &Reader{
		pool:    pool,
		cache:   cache,
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Asset resolves one asset id. A nil asset with a nil error means no mirror
// could serve it this cycle; callers treat that as "no data", not a fault.
func (r *Reader) Asset(ctx context.Context, assetID string) (*Asset, error) {
	m := metrics.Get()

	if raw, ok := r.cache.Get(assetID); ok {
		var a Asset
		if err := json.Unmarshal(raw, &a); err == nil {
			m.AssetCacheHits.Inc()
			return &a, nil
		}
		// Corrupt cache file: fall through to the network and rewrite it.
	}
	m.AssetCacheMisses.Inc()

	var lastErr error
	urls := r.pool.Ordered()
	for attempt, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m.RPCRequestsTotal.WithLabelValues(url, "get_asset").Inc()

		raw, err := r.fetch(ctx, url, assetID)
		if err != nil {
			m.RPCRequestsFailed.WithLabelValues(url, "get_asset").Inc()
			logging.EndpointFailed("get_asset", url, attempt+1, err)
			lastErr = err
			continue
		}

		var a Asset
		if err := json.Unmarshal(raw, &a); err != nil || a.AssetID == "" {
			m.RPCRequestsFailed.WithLabelValues(url, "get_asset").Inc()
			lastErr = fmt.Errorf("unusable asset payload from %s", url)
			continue
		}

		r.cache.Put(assetID, raw)
		return &a, nil
	}

	m.FailoverExhausted.WithLabelValues("get_asset").Inc()
	logging.FailoverExhausted("get_asset", len(urls), lastErr)
	return nil, nil
}

// Delays resolves a batch of asset ids and returns their delay attributes in
// order. Unresolvable assets are reported so the caller can decide whether
// the cooldown math is still trustworthy.
func (r *Reader) Delays(ctx context.Context, assetIDs []string) ([]float64, []string, error) {
	delays := make([]float64, 0, len(assetIDs))
	var missing []string
	for _, id := range assetIDs {
		a, err := r.Asset(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if a == nil {
			missing = append(missing, id)
			continue
		}
		delays = append(delays, a.Data.Delay)
	}
	return delays, missing, nil
}

func (r *Reader) fetch(ctx context.Context, baseURL, assetID string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet,
		fmt.Sprintf("%s/atomicassets/v1/assets/%s", baseURL, assetID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if !env.Success || len(env.Data) == 0 {
		return nil, fmt.Errorf("api reported failure")
	}
	return env.Data, nil
}
