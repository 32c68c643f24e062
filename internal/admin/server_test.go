package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wax-miner-go/internal/config"
	"wax-miner-go/internal/endpoints"
	"wax-miner-go/internal/history"
	"wax-miner-go/internal/runner"
)

type staticHistory struct {
	attempts []history.Attempt
}

func (s *staticHistory) Recent(_ context.Context, _ int) ([]history.Attempt, error) {
	return s.attempts, nil
}

func newTestServer(ledger HistorySource) *httptest.Server {
	cfg := &config.Config{Interval: time.Minute}
	r := runner.New(cfg,
		endpoints.New([]string{"https://rpc"}),
		endpoints.New([]string{"https://atomic"}),
		nil, nil, nil, nil, io.Discard)
	return httptest.NewServer(New(r, ledger).Handler())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "accounts")
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryEnabled(t *testing.T) {
	srv := newTestServer(&staticHistory{attempts: []history.Attempt{
		{ID: 1, Account: "alice.wam", Outcome: history.OutcomeMined, TxID: "cafebabe01"},
	}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cafebabe01")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
