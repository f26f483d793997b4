package storage

// sqlite.go — persistencia SQLite del copytrader.
//
// Tablas:
//   leader_wallets  — wallets líderes seguidos (registro mutable)
//   leader_trades   — fills observados, UNIQUE(trade_hash) para dedup
//   follower_trades — órdenes derivadas, incluyendo rechazos
//   bot_state       — estado global mutable (key/value), sobrevive restarts
//
// Un solo tipo implementa ports.Ledger, ports.WalletRegistry y
// ports.BotStateStore: las tres caras comparten la misma base y las
// mismas transacciones.

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS leader_wallets (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    address    TEXT     NOT NULL UNIQUE,
    nickname   TEXT     NOT NULL,
    active     INTEGER  NOT NULL DEFAULT 1,
    copy_pct   REAL     NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS leader_trades (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    wallet_address TEXT     NOT NULL,
    market_id      TEXT     NOT NULL,
    outcome_id     TEXT     NOT NULL,
    side           TEXT     NOT NULL,
    size           REAL     NOT NULL,
    price          REAL     NOT NULL,
    traded_at      DATETIME NOT NULL,
    trade_hash     TEXT     NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS follower_trades (
    id               TEXT PRIMARY KEY,
    leader_trade_id  INTEGER  NOT NULL REFERENCES leader_trades(id),
    market_id        TEXT     NOT NULL,
    outcome_id       TEXT     NOT NULL,
    side             TEXT     NOT NULL,
    size             REAL     NOT NULL,
    price            REAL     NOT NULL,
    status           TEXT     NOT NULL DEFAULT 'PENDING',
    rejection_reason TEXT     NOT NULL DEFAULT '',
    is_dry_run       INTEGER  NOT NULL DEFAULT 0,
    order_id         TEXT     NOT NULL DEFAULT '',
    executed_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bot_state (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leader_trades_wallet ON leader_trades(wallet_address, traded_at DESC);
CREATE INDEX IF NOT EXISTS idx_follower_status      ON follower_trades(status);
CREATE INDEX IF NOT EXISTS idx_follower_triple      ON follower_trades(market_id, outcome_id, side);
CREATE INDEX IF NOT EXISTS idx_follower_executed    ON follower_trades(executed_at DESC);
`

// SQLiteStorage implementa los puertos de persistencia usando SQLite
// (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y
// aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping verifica que la base responde.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
