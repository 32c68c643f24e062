package endpoints

import (
	"math/rand"
	"sync"
	"time"
)

// Pool holds one ordered list of interchangeable mirror endpoints.
// The daemon owns two pools: chain RPC mirrors and AtomicAssets API mirrors.
// Failover reads walk the current order; submission samples one at random.
// Endpoints are never removed, failures are transient per cycle.
type Pool struct {
	mu   sync.RWMutex
	urls []string
	rng  *rand.Rand
}

// New creates a pool seeded from the wall clock.
func New(urls []string) *Pool {
	return NewWithSource(urls, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a pool with an explicit random source so tests can
// inject deterministic orderings.
func NewWithSource(urls []string, src rand.Source) *Pool {
	p := &Pool{
		urls: make([]string, len(urls)),
		rng:  rand.New(src),
	}
	copy(p.urls, urls)
	return p
}

// Shuffle replaces the current order with a new random permutation. Called
// at the start of every cycle to spread load across mirrors.
func (p *Pool) Shuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng.Shuffle(len(p.urls), func(i, j int) {
		p.urls[i], p.urls[j] = p.urls[j], p.urls[i]
	})
}

// Sample returns one uniformly random endpoint. Used on the submission path
// where only a single attempt is made.
func (p *Pool) Sample() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.urls) == 0 {
		return ""
	}
	return p.urls[p.rng.Intn(len(p.urls))]
}

// Ordered returns a snapshot of the endpoints in current order for
// sequential failover.
func (p *Pool) Ordered() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.urls))
	copy(out, p.urls)
	return out
}

// Size returns the number of configured endpoints.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.urls)
}
