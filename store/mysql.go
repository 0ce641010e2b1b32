package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlDDL = `
CREATE TABLE IF NOT EXISTS sessions (
	id              BIGINT AUTO_INCREMENT PRIMARY KEY,
	session_token   VARCHAR(32) NOT NULL,
	customer_id     BIGINT NOT NULL,
	access_rights   VARCHAR(32) NOT NULL DEFAULT 'User',
	expiration_date DATETIME NOT NULL,
	deleted         BOOLEAN NOT NULL DEFAULT FALSE,

	INDEX idx_sessions_token (session_token, deleted),
	INDEX idx_sessions_customer (customer_id, deleted)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS customers (
	id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
	login                    VARCHAR(64) NOT NULL UNIQUE,
	password_hash            VARCHAR(64),
	access_rights            VARCHAR(32) NOT NULL DEFAULT 'User',
	email                    VARCHAR(128),
	first_name               VARCHAR(64),
	last_name                VARCHAR(64),
	phone                    VARCHAR(32),
	deleted                  BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS cars (
	id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_id              BIGINT NOT NULL,
	license_plate            VARCHAR(16),
	model                    VARCHAR(64),
	battery_capacity_kwh     DOUBLE,
	deleted                  BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS rfids (
	id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_id              BIGINT NOT NULL,
	tag                      VARCHAR(32) NOT NULL UNIQUE,
	deleted                  BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS stations (
	id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
	name                     VARCHAR(64),
	latitude                 DOUBLE,
	longitude                DOUBLE,
	operator_id              BIGINT,
	tariff_id                BIGINT,
	deleted                  BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS tariffs (
	id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
	name                     VARCHAR(64),
	price_per_kwh            DOUBLE,
	currency                 VARCHAR(8),
	deleted                  BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date_epochtime  BIGINT,
	update_date_epochtime    BIGINT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

// NewMySQL creates a MySQL-backed store from an open pool. The schema is
// bootstrapped on open.
func NewMySQL(db *sql.DB, opts Options) (*SQLStore, error) {
	// MySQL runs one statement per Exec unless multiStatements is enabled
	// on the DSN, so the bootstrap DDL is split per table.
	var stmts []string
	for _, stmt := range strings.Split(mysqlDDL, ";\n") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}

	return newSQLStore(db, dialect{
		name:              "mysql",
		ddl:               stmts,
		isTransient:       mysqlTransient,
		isUniqueViolation: mysqlUniqueViolation,
	}, opts)
}

// NewMySQLFromDSN creates a MySQL-backed store from a DSN of the form
// user:password@tcp(host:port)/database.
func NewMySQLFromDSN(dsn string, opts Options) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn+"?parseTime=true")
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: failed to connect: %w", err)
	}

	return NewMySQL(db, opts)
}

// mysqlTransient classifies server-side connection failures as retryable.
// Client-side connection drops are already covered by the driver-agnostic
// classification (driver.ErrBadConn, net errors, mysql.ErrInvalidConn).
func mysqlTransient(err error) bool {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var merr *mysql.MySQLError
	if !errors.As(err, &merr) {
		return false
	}
	switch merr.Number {
	case 1040, // ER_CON_COUNT_ERROR: too many connections
		1042, // ER_BAD_HOST_ERROR
		1043, // ER_HANDSHAKE_ERROR
		1053, // ER_SERVER_SHUTDOWN
		1077, // ER_NORMAL_SHUTDOWN
		1205, // ER_LOCK_WAIT_TIMEOUT
		1213, // ER_LOCK_DEADLOCK
		1317: // ER_QUERY_INTERRUPTED
		return true
	}
	return false
}

func mysqlUniqueViolation(err error) bool {
	var merr *mysql.MySQLError
	if !errors.As(err, &merr) {
		return false
	}
	return merr.Number == 1062 || merr.Number == 1586 // ER_DUP_ENTRY, ER_DUP_ENTRY_WITH_KEY_NAME
}
