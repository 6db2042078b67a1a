package store

const schema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS trades (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    side TEXT NOT NULL,
    amount REAL NOT NULL,
    price REAL NOT NULL,
    exit_price REAL DEFAULT 0,
    realized_pnl REAL DEFAULT 0,
    signal_snapshot TEXT,
    rationale TEXT,
    reason TEXT NOT NULL,
    simulated INTEGER NOT NULL DEFAULT 0,
    ts DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts);

CREATE TABLE IF NOT EXISTS positions (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    entry_price REAL NOT NULL,
    amount REAL NOT NULL,
    stop_loss_price REAL DEFAULT 0,
    current_price REAL DEFAULT 0,
    unrealized_pnl REAL DEFAULT 0,
    exit_price REAL DEFAULT 0,
    status TEXT NOT NULL,
    opened_at DATETIME NOT NULL,
    closed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);

CREATE TABLE IF NOT EXISTS engine_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    starting_capital REAL NOT NULL,
    balance REAL NOT NULL,
    daily_pnl REAL NOT NULL,
    total_pnl REAL NOT NULL,
    locked INTEGER NOT NULL DEFAULT 0,
    anchor_date TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_stats (
    date TEXT PRIMARY KEY,
    trades INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    realized_pnl REAL NOT NULL DEFAULT 0
);
`
