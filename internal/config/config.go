package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eoscanada/eos-go/ecc"
	"github.com/joho/godotenv"
)

// Account is one configured miner identity. PrivateKey must never be logged
// or persisted anywhere outside the signing path.
type Account struct {
	Name       string
	PrivateKey string
}

// Config is the full environment-driven configuration surface.
type Config struct {
	ChainEndpoints  []string
	AtomicEndpoints []string
	Accounts        []Account

	DryRun        bool
	Interval      time.Duration
	DelayMin      time.Duration
	DelayMax      time.Duration
	OverlapCycles bool // legacy fire-and-forget scheduling
	RPCTimeout    time.Duration

	MineContract   string
	MineAction     string
	MineTable      string
	MineScope      string
	MinePermission string

	AssetCacheDir string
	AssetCacheTTL time.Duration // 0 = cache entries never expire

	HistoryDB string // empty disables the mine-history ledger
	AdminAddr string // empty disables the admin HTTP surface

	LogLevel string
}

// Load reads configuration from the environment. A .env file is optional.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ChainEndpoints:  getEnvList("RPC_ENDPOINTS", "https://wax.greymass.com,https://wax.pink.gg,https://api.waxsweden.org,https://wax.eosphere.io"),
		AtomicEndpoints: getEnvList("ATOMIC_ENDPOINTS", "https://wax.api.atomicassets.io,https://aa.wax.blacklusion.io,https://atomic.wax.eosrio.io"),
		Accounts:        loadAccounts(),

		DryRun:        getEnvAsBool("DRY_RUN", false),
		Interval:      time.Duration(getEnvAsInt("INTERVAL_MINUTES", 15)) * time.Minute,
		DelayMin:      time.Duration(getEnvAsInt("DELAY_MIN_SECONDS", 4)) * time.Second,
		DelayMax:      time.Duration(getEnvAsInt("DELAY_MAX_SECONDS", 10)) * time.Second,
		OverlapCycles: getEnvAsBool("OVERLAP_CYCLES", false),
		RPCTimeout:    time.Duration(getEnvAsInt("RPC_TIMEOUT_SECONDS", 5)) * time.Second,

		MineContract:   getEnv("MINE_CONTRACT", "m.federation"),
		MineAction:     getEnv("MINE_ACTION", "mine"),
		MineTable:      getEnv("MINE_TABLE", "miners"),
		MineScope:      getEnv("MINE_SCOPE", "m.federation"),
		MinePermission: getEnv("MINE_PERMISSION", "active"),

		AssetCacheDir: getEnv("ASSET_CACHE_DIR", filepath.Join(os.TempDir(), "wax-miner-assets")),
		AssetCacheTTL: time.Duration(getEnvAsInt("ASSET_CACHE_TTL_HOURS", 0)) * time.Hour,

		HistoryDB: getEnv("HISTORY_DB", "miner_history.db"),
		AdminAddr: getEnv("ADMIN_ADDR", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DelayMax < cfg.DelayMin {
		slog.Warn("delay_window_inverted",
			slog.Duration("min", cfg.DelayMin),
			slog.Duration("max", cfg.DelayMax),
		)
		cfg.DelayMax = cfg.DelayMin
	}

	return cfg
}

// Validate reports configuration states the daemon cannot start from.
func (c *Config) Validate() error {
	if len(c.ChainEndpoints) == 0 {
		return fmt.Errorf("no chain RPC endpoints configured")
	}
	if len(c.AtomicEndpoints) == 0 {
		return fmt.Errorf("no atomic API endpoints configured")
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("no usable accounts configured")
	}
	return nil
}

// loadAccounts enumerates MINER_ACCOUNT_1/MINER_KEY_1, MINER_ACCOUNT_2/...
// until the first unset account slot. A missing or malformed private key
// excludes that account with a warning; it never aborts the process.
func loadAccounts() []Account {
	var accounts []Account
	for i := 1; ; i++ {
		name := os.Getenv(fmt.Sprintf("MINER_ACCOUNT_%d", i))
		if name == "" {
			break
		}
		key := os.Getenv(fmt.Sprintf("MINER_KEY_%d", i))
		if key == "" {
			slog.Warn("account_excluded",
				slog.String("account", name),
				slog.String("reason", "missing private key"),
			)
			continue
		}
		if _, err := ecc.NewPrivateKey(key); err != nil {
			slog.Warn("account_excluded",
				slog.String("account", name),
				slog.String("reason", "invalid private key"),
			)
			continue
		}
		accounts = append(accounts, Account{Name: name, PrivateKey: key})
	}
	return accounts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		slog.Warn("invalid_env_value",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Int64("default", defaultValue),
		)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
