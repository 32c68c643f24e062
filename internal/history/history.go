// Package history keeps a local ledger of per-account mine attempts in an
// embedded SQLite file so operators can see what the daemon has been doing
// across restarts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Attempt outcomes.
const (
	OutcomeMined    = "mined"
	OutcomeDryRun   = "dry_run"
	OutcomeCooldown = "cooldown"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Attempt is one recorded evaluation of one account.
type Attempt struct {
	ID        int64     `db:"id" json:"id"`
	Account   string    `db:"account" json:"account"`
	Outcome   string    `db:"outcome" json:"outcome"`
	TxID      string    `db:"tx_id" json:"tx_id,omitempty"`
	Detail    string    `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS mine_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account TEXT NOT NULL,
	outcome TEXT NOT NULL,
	tx_id TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mine_attempts_account ON mine_attempts(account, id);
`

// Store is the ledger repository.
type Store struct {
	db *sqlx.DB
}

// Open opens (and if needed bootstraps) the ledger at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// modernc sqlite is happiest with a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Tests use this with sqlmock.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one attempt. CreatedAt defaults to now when unset.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO mine_attempts (account, outcome, tx_id, detail, created_at)
		VALUES (:account, :outcome, :tx_id, :detail, :created_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, a)
	return err
}

// Recent returns the newest attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Attempt
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, account, outcome, tx_id, detail, created_at
		 FROM mine_attempts ORDER BY id DESC LIMIT $1`, limit)
	return out, err
}

// LastMined returns the newest successful attempt for an account, or nil.
func (s *Store) LastMined(ctx context.Context, account string) (*Attempt, error) {
	var a Attempt
	err := s.db.GetContext(ctx, &a,
		`SELECT id, account, outcome, tx_id, detail, created_at
		 FROM mine_attempts
		 WHERE account = $1 AND outcome = $2
		 ORDER BY id DESC LIMIT 1`, account, OutcomeMined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
