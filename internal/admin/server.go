package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wax-miner-go/internal/history"
	"wax-miner-go/internal/runner"
)

// HistorySource supplies recent mine attempts. Nil when the ledger is
// disabled.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Attempt, error)
}

// Server is the operator-facing HTTP surface: health, status, recent
// history and Prometheus metrics.
type Server struct {
	runner    *runner.Runner
	ledger    HistorySource
	startTime time.Time
}

// New builds the admin server. ledger may be nil.
func New(r *runner.Runner, ledger HistorySource) *Server {
	return &Server{
		runner:    r,
		ledger:    ledger,
		startTime: time.Now(),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health)
	mux.HandleFunc("/status", s.status)
	mux.HandleFunc("/history", s.history)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("admin_server_started", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lastCycle, accounts := s.runner.Status()
	resp := map[string]any{
		"uptime":   time.Since(s.startTime).String(),
		"accounts": accounts,
	}
	if !lastCycle.IsZero() {
		resp["last_cycle"] = lastCycle.Format(time.RFC3339)
	}
	writeJSON(w, resp)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ledger == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	attempts, err := s.ledger.Recent(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"attempts": attempts})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
