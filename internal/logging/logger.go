package logging

import (
	"log/slog"
	"os"
)

// Init configures the process-wide structured logger. Format follows
// LOG_FORMAT: "text" for development, JSON otherwise.
func Init(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var logger *slog.Logger
	if os.Getenv("LOG_FORMAT") == "text" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	slog.SetDefault(logger)
}

// EndpointFailed records one failed attempt in a failover chain.
func EndpointFailed(call, endpoint string, attempt int, err error) {
	slog.Warn("endpoint_failed",
		slog.String("call", call),
		slog.String("endpoint", endpoint),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
	)
}

// FailoverExhausted records a read that failed on every configured mirror.
func FailoverExhausted(call string, attempts int, lastErr error) {
	msg := "none"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	slog.Warn("failover_exhausted",
		slog.String("call", call),
		slog.Int("attempts", attempts),
		slog.String("last_error", msg),
	)
}

// MineSubmitted records a successful broadcast.
func MineSubmitted(account, txID, endpoint string) {
	slog.Info("mine_submitted",
		slog.String("account", account),
		slog.String("tx_id", txID),
		slog.String("endpoint", endpoint),
	)
}

// MineFailed records a signing or broadcast failure. The error is absorbed
// at the submitter boundary; this log line is its only trace besides metrics.
func MineFailed(account string, err error) {
	slog.Error("mine_failed",
		slog.String("account", account),
		slog.String("error", err.Error()),
	)
}
