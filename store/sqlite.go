package store

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
)

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS sessions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_token   VARCHAR(32) NOT NULL,
	customer_id     INTEGER NOT NULL,
	access_rights   VARCHAR(32) NOT NULL DEFAULT 'User',
	expiration_date DATETIME NOT NULL,
	deleted         BOOLEAN NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_token_active
	ON sessions (session_token) WHERE deleted = 0;

CREATE INDEX IF NOT EXISTS idx_sessions_customer
	ON sessions (customer_id, deleted);

CREATE TABLE IF NOT EXISTS customers (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	login                    VARCHAR(64) NOT NULL UNIQUE,
	password_hash            VARCHAR(64),
	access_rights            VARCHAR(32) NOT NULL DEFAULT 'User',
	email                    VARCHAR(128),
	first_name               VARCHAR(64),
	last_name                VARCHAR(64),
	phone                    VARCHAR(32),
	deleted                  BOOLEAN NOT NULL DEFAULT 0,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
);

CREATE TABLE IF NOT EXISTS cars (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id              INTEGER NOT NULL,
	license_plate            VARCHAR(16),
	model                    VARCHAR(64),
	battery_capacity_kwh     REAL,
	deleted                  BOOLEAN NOT NULL DEFAULT 0,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
);

CREATE TABLE IF NOT EXISTS rfids (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id              INTEGER NOT NULL,
	tag                      VARCHAR(32) NOT NULL UNIQUE,
	deleted                  BOOLEAN NOT NULL DEFAULT 0,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
);

CREATE TABLE IF NOT EXISTS stations (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	name                     VARCHAR(64),
	latitude                 REAL,
	longitude                REAL,
	operator_id              INTEGER,
	tariff_id                INTEGER,
	deleted                  BOOLEAN NOT NULL DEFAULT 0,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
);

CREATE TABLE IF NOT EXISTS tariffs (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	name                     VARCHAR(64),
	price_per_kwh            REAL,
	currency                 VARCHAR(8),
	deleted                  BOOLEAN NOT NULL DEFAULT 0,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
);
`

// NewSQLite creates a SQLite-backed store using the pure Go
// modernc.org/sqlite driver. The database file is created if it doesn't
// exist and the schema is bootstrapped on open.
func NewSQLite(dbPath string, opts Options) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	return newSQLStore(db, dialect{
		name:              "sqlite",
		ddl:               []string{sqliteDDL},
		isTransient:       sqliteTransient,
		isUniqueViolation: sqliteUniqueViolation,
	}, opts)
}

// SQLITE_BUSY and SQLITE_LOCKED mean another connection holds the file; the
// statement is safe to retry after the fixed delay.
func sqliteTransient(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case 5, 6: // SQLITE_BUSY, SQLITE_LOCKED
		return true
	}
	return false
}

func sqliteUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case 1555, 2067: // SQLITE_CONSTRAINT_PRIMARYKEY, SQLITE_CONSTRAINT_UNIQUE
		return true
	}
	return false
}
