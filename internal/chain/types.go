package chain

import (
	"context"
	"time"

	eos "github.com/eoscanada/eos-go"
)

// API is the slice of the eos-go client surface the reader touches, one
// client per mirror endpoint. Narrow on purpose so tests can fake it; the
// head-info and broadcast calls live with the submitter.
type API interface {
	GetTableRows(ctx context.Context, req eos.GetTableRowsRequest) (*eos.GetTableRowsResp, error)
}

// APIFactory builds an API client for a base URL.
type APIFactory func(url string) API

// DefaultFactory dials a real eos-go client.
func DefaultFactory(url string) API { return eos.New(url) }

// MinerRow is one account's game state as stored in the mine contract's
// table. Fetched fresh every cycle, never cached; the chain mutates it, we
// only read.
type MinerRow struct {
	Miner    string   `json:"miner"`
	Land     string   `json:"land"`
	Bag      []string `json:"bag"`
	LastMine int64    `json:"last_mine"`
}

// LastMineTime converts the stored unix timestamp.
func (r *MinerRow) LastMineTime() time.Time {
	return time.Unix(r.LastMine, 0).UTC()
}

// Tools returns the inventory with null and empty slots filtered out; those
// contribute zero delay and must not hit the asset API.
func (r *MinerRow) Tools() []string {
	out := make([]string, 0, len(r.Bag))
	for _, id := range r.Bag {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
