package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// stateKey is the fixed key of the single durable record.
const stateKey = "wipeout.account.v1"

const schema = `
CREATE TABLE IF NOT EXISTS account_state (
    key             TEXT PRIMARY KEY,
    balance         REAL    NOT NULL,
    all_time_high   REAL    NOT NULL,
    bankrupt_count  INTEGER NOT NULL,
    last_round_pnl  REAL    NOT NULL,
    rescue_count    INTEGER NOT NULL,
    rescue_last_used INTEGER NOT NULL,
    round_number    INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
`

// SQLiteStore implements Store on a single-row SQLite table (pure Go,
// no CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path and
// applies the schema. ":memory:" is accepted for throwaway sessions.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("account.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("account.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the account record. A missing or unscannable row yields
// Defaults, never an error: a broken save file should not keep the
// player out of the game.
func (s *SQLiteStore) Load(ctx context.Context) (Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT balance, all_time_high, bankrupt_count, last_round_pnl,
		       rescue_count, rescue_last_used, round_number
		FROM account_state WHERE key = ?`, stateKey)

	var a Account
	var lastUsed int64
	err := row.Scan(&a.Balance, &a.AllTimeHigh, &a.BankruptCount, &a.LastRoundPnl,
		&a.Rescue.Count, &lastUsed, &a.RoundNumber)
	if err != nil {
		// sql.ErrNoRows and a corrupt row both mean "no prior record".
		return Defaults(), nil
	}
	if lastUsed > 0 {
		a.Rescue.LastUsedAt = time.Unix(lastUsed, 0).UTC()
	}
	return a, nil
}

// Save overwrites the record wholesale.
func (s *SQLiteStore) Save(ctx context.Context, a Account) error {
	var lastUsed int64
	if !a.Rescue.LastUsedAt.IsZero() {
		lastUsed = a.Rescue.LastUsedAt.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_state
		    (key, balance, all_time_high, bankrupt_count, last_round_pnl,
		     rescue_count, rescue_last_used, round_number, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		    balance          = excluded.balance,
		    all_time_high    = excluded.all_time_high,
		    bankrupt_count   = excluded.bankrupt_count,
		    last_round_pnl   = excluded.last_round_pnl,
		    rescue_count     = excluded.rescue_count,
		    rescue_last_used = excluded.rescue_last_used,
		    round_number     = excluded.round_number,
		    updated_at       = excluded.updated_at`,
		stateKey, a.Balance, a.AllTimeHigh, a.BankruptCount, a.LastRoundPnl,
		a.Rescue.Count, lastUsed, a.RoundNumber, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("account.Save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
