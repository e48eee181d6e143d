package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger_entries (
    epoch_day            INTEGER PRIMARY KEY,
    exercised            INTEGER NOT NULL,
    balance_after        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deductions (
    id                   TEXT PRIMARY KEY,
    label                TEXT NOT NULL,
    emoji                TEXT NOT NULL,
    amount               TEXT NOT NULL,
    created_at_ns        INTEGER NOT NULL,
    balance_before       TEXT NOT NULL,
    balance_after        TEXT NOT NULL,
    reward_rate          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    id                    INTEGER PRIMARY KEY CHECK (id = 1),
    reward_rate           TEXT NOT NULL,
    available_freezes     INTEGER NOT NULL DEFAULT 0,
    total_freeze_spending TEXT NOT NULL DEFAULT '0.00'
);

CREATE TABLE IF NOT EXISTS frozen_dates (
    epoch_day            INTEGER PRIMARY KEY,
    cost                 TEXT NOT NULL,
    frozen_at_ns         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deductions_created ON deductions(created_at_ns);
`
