package submit

import (
	"context"
	"fmt"
	"time"

	eos "github.com/eoscanada/eos-go"

	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/metrics"
)

// API is the slice of the eos-go client surface the submitter needs.
type API interface {
	GetInfo(ctx context.Context) (*eos.InfoResp, error)
	PushTransaction(ctx context.Context, tx *eos.PackedTransaction) (*eos.PushTransactionFullResp, error)
}

// APIFactory builds an API client for a base URL.
type APIFactory func(url string) API

// DefaultFactory dials a real eos-go client.
func DefaultFactory(url string) API { return eos.New(url) }

// MineData is the declarative payload of the mine action.
type MineData struct {
	Miner eos.AccountName `json:"miner"`
}

// MineAction builds the single mine intent for an account.
func MineAction(contract, name, account, permission string) *eos.Action {
	return &eos.Action{
		Account: eos.AN(contract),
		Name:    eos.ActN(name),
		Authorization: []eos.PermissionLevel{{
			Actor:      eos.AN(account),
			Permission: eos.PN(permission),
		}},
		ActionData: eos.NewActionData(MineData{Miner: eos.AN(account)}),
	}
}

// Submitter builds, signs and broadcasts one transaction against a single
// randomly sampled RPC endpoint. No failover on this path: a failed
// broadcast is abandoned for the cycle and the next cycle re-evaluates.
type Submitter struct {
	pool    *endpoints.Pool
	timeout time.Duration
	dryRun  bool
	factory APIFactory
}

// New builds a submitter. With dryRun set, Submit is a no-op that performs
// zero network calls.
func New(pool *endpoints.Pool, timeout time.Duration, dryRun bool) *Submitter {
	return &Submitter{
		pool:    pool,
		timeout: timeout,
		dryRun:  dryRun,
		factory: DefaultFactory,
	}
}

// SetFactory swaps the client constructor. Tests inject fakes here.
func (s *Submitter) SetFactory(f APIFactory) { s.factory = f }

// DryRun reports whether broadcasting is disabled.
func (s *Submitter) DryRun() bool { return s.dryRun }

// Submit signs the actions with the given private keys and broadcasts the
// packed transaction. Returns the transaction id and the endpoint used.
// Expiration is head block time plus one hour.
func (s *Submitter) Submit(ctx context.Context, privateKeys []string, actions []*eos.Action) (txID, endpoint string, err error) {
	if s.dryRun {
		return "", "", nil
	}

	m := metrics.Get()

	endpoint = s.pool.Sample()
	if endpoint == "" {
		return "", "", fmt.Errorf("no RPC endpoints configured")
	}
	api := s.factory(endpoint)

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m.RPCRequestsTotal.WithLabelValues(endpoint, "get_info").Inc()
	info, err := api.GetInfo(opCtx)
	if err != nil {
		m.RPCRequestsFailed.WithLabelValues(endpoint, "get_info").Inc()
		return "", endpoint, fmt.Errorf("get_info: %w", err)
	}

	refNum, refPrefix, err := ReferenceBlock(info.HeadBlockID)
	if err != nil {
		return "", endpoint, fmt.Errorf("derive reference block: %w", err)
	}

	tx := &eos.Transaction{Actions: actions}
	tx.Expiration = eos.JSONTime{Time: info.HeadBlockTime.Time.Add(time.Hour)}
	tx.RefBlockNum = refNum
	tx.RefBlockPrefix = refPrefix

	keyBag := eos.NewKeyBag()
	for _, key := range privateKeys {
		if err := keyBag.ImportPrivateKey(ctx, key); err != nil {
			return "", endpoint, fmt.Errorf("import private key: %w", err)
		}
	}
	pubKeys, err := keyBag.AvailableKeys(ctx)
	if err != nil {
		return "", endpoint, fmt.Errorf("available keys: %w", err)
	}

	signedTx := eos.NewSignedTransaction(tx)
	signedTx, err = keyBag.Sign(ctx, signedTx, info.ChainID, pubKeys...)
	if err != nil {
		return "", endpoint, fmt.Errorf("sign: %w", err)
	}

	packed, err := signedTx.Pack(eos.CompressionNone)
	if err != nil {
		return "", endpoint, fmt.Errorf("pack: %w", err)
	}

	m.RPCRequestsTotal.WithLabelValues(endpoint, "push_transaction").Inc()
	resp, err := api.PushTransaction(opCtx, packed)
	if err != nil {
		m.RPCRequestsFailed.WithLabelValues(endpoint, "push_transaction").Inc()
		return "", endpoint, fmt.Errorf("push_transaction: %w", err)
	}
	return resp.TransactionID, endpoint, nil
}
