package chain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	eos "github.com/eoscanada/eos-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wax-miner-go/internal/endpoints"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetTableRows(ctx context.Context, req eos.GetTableRowsRequest) (*eos.GetTableRowsResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eos.GetTableRowsResp), args.Error(1)
}

func rowsResp(rows string) *eos.GetTableRowsResp {
	return &eos.GetTableRowsResp{Rows: json.RawMessage(rows)}
}

func newTestReader(urls []string, apis map[string]*mockAPI) *Reader {
	pool := endpoints.New(urls)
	r := NewReader(pool, TableSpec{Code: "m.federation", Scope: "m.federation", Table: "miners"}, time.Second)
	r.SetFactory(func(url string) API { return apis[url] })
	return r
}

func TestReader_FirstEndpointSucceeds(t *testing.T) {
	good := new(mockAPI)
	good.On("GetTableRows", mock.Anything, mock.Anything).
		Return(rowsResp(`[{"miner":"alice.wam","land":"1099512961112","bag":["5001","5002"],"last_mine":1620000000}]`), nil).Once()

	// The untouched mirror must see no calls at all.
	untouched := new(mockAPI)

	r := newTestReader([]string{"https://a", "https://b"}, map[string]*mockAPI{
		"https://a": good, "https://b": untouched,
	})

	row, err := r.MinerRow(context.Background(), "alice.wam")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "alice.wam", row.Miner)
	assert.Equal(t, "1099512961112", row.Land)
	assert.Equal(t, []string{"5001", "5002"}, row.Bag)
	assert.Equal(t, time.Unix(1620000000, 0).UTC(), row.LastMineTime())

	good.AssertExpectations(t)
	untouched.AssertExpectations(t)
}

func TestReader_FailsOverPastErrors(t *testing.T) {
	bad := new(mockAPI)
	bad.On("GetTableRows", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	empty := new(mockAPI)
	empty.On("GetTableRows", mock.Anything, mock.Anything).
		Return(rowsResp(`[]`), nil).Once()

	good := new(mockAPI)
	good.On("GetTableRows", mock.Anything, mock.Anything).
		Return(rowsResp(`[{"miner":"alice.wam","last_mine":5}]`), nil).Once()

	// Pool order is the construction order until someone calls Shuffle.
	r := newTestReader([]string{"https://a", "https://b", "https://c"}, map[string]*mockAPI{
		"https://a": bad, "https://b": empty, "https://c": good,
	})

	row, err := r.MinerRow(context.Background(), "alice.wam")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "alice.wam", row.Miner)

	bad.AssertExpectations(t)
	empty.AssertExpectations(t)
	good.AssertExpectations(t)
}

func TestReader_ExhaustionReturnsEmptyNotError(t *testing.T) {
	a := new(mockAPI)
	a.On("GetTableRows", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).Once()
	b := new(mockAPI)
	b.On("GetTableRows", mock.Anything, mock.Anything).
		Return(nil, errors.New("503")).Once()

	r := newTestReader([]string{"https://a", "https://b"}, map[string]*mockAPI{
		"https://a": a, "https://b": b,
	})

	row, err := r.MinerRow(context.Background(), "ghost.wam")
	assert.NoError(t, err)
	assert.Nil(t, row)
	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestReader_EmptyRowsEverywhereMeansNotFound(t *testing.T) {
	a := new(mockAPI)
	a.On("GetTableRows", mock.Anything, mock.Anything).Return(rowsResp(`[]`), nil).Once()
	b := new(mockAPI)
	b.On("GetTableRows", mock.Anything, mock.Anything).Return(rowsResp(`[]`), nil).Once()

	r := newTestReader([]string{"https://a", "https://b"}, map[string]*mockAPI{
		"https://a": a, "https://b": b,
	})

	row, err := r.MinerRow(context.Background(), "ghost.wam")
	assert.NoError(t, err)
	assert.Nil(t, row)
}

// stalledAPI never answers; only the per-attempt deadline releases it.
type stalledAPI struct{}

func (stalledAPI) GetTableRows(ctx context.Context, _ eos.GetTableRowsRequest) (*eos.GetTableRowsResp, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestReader_SlowMirrorTimesOutAndFailsOver(t *testing.T) {
	good := new(mockAPI)
	good.On("GetTableRows", mock.Anything, mock.Anything).
		Return(rowsResp(`[{"miner":"alice.wam"}]`), nil).Once()

	pool := endpoints.New([]string{"https://slow", "https://fast"})
	r := NewReader(pool, TableSpec{Code: "m.federation", Scope: "m.federation", Table: "miners"}, 25*time.Millisecond)
	r.SetFactory(func(url string) API {
		if url == "https://slow" {
			return stalledAPI{}
		}
		return good
	})

	row, err := r.MinerRow(context.Background(), "alice.wam")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "alice.wam", row.Miner)
	good.AssertExpectations(t)
}

func TestReader_CanceledContext(t *testing.T) {
	r := newTestReader([]string{"https://a"}, map[string]*mockAPI{"https://a": new(mockAPI)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.MinerRow(ctx, "alice.wam")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_QueriesExactAccountBounds(t *testing.T) {
	api := new(mockAPI)
	api.On("GetTableRows", mock.Anything, mock.MatchedBy(func(req eos.GetTableRowsRequest) bool {
		return req.LowerBound == "alice.wam" && req.UpperBound == "alice.wam" &&
			req.Limit == 1 && req.JSON &&
			req.Code == "m.federation" && req.Table == "miners"
	})).Return(rowsResp(`[{"miner":"alice.wam"}]`), nil).Once()

	r := newTestReader([]string{"https://a"}, map[string]*mockAPI{"https://a": api})

	_, err := r.MinerRow(context.Background(), "alice.wam")
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestMinerRow_ToolsFiltersEmptySlots(t *testing.T) {
	var row MinerRow
	require.NoError(t, json.Unmarshal(
		[]byte(`{"miner":"a","bag":[null,"5001",null],"last_mine":0}`), &row))

	assert.Equal(t, []string{"5001"}, row.Tools())
}
