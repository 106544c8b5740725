package capability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL backend behind a probe
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DriverName returns the database/sql driver registered for the dialect
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return "sqlite3"
	default:
		return "mysql"
	}
}

// ParseDialect converts a configured driver or dialect name
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", name)
	}
}

// SQLProbe inspects a live database
type SQLProbe struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLProbe creates a probe over db
func NewSQLProbe(db *sql.DB, dialect Dialect) *SQLProbe {
	return &SQLProbe{db: db, dialect: dialect}
}

// Open connects to the database and returns a probe over it
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLProbe, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSQLProbe(db, dialect), nil
}

// Close releases the underlying connection pool
func (p *SQLProbe) Close() error {
	return p.db.Close()
}

// SupportsFullText implements Probe
func (p *SQLProbe) SupportsFullText(ctx context.Context, table string) (bool, error) {
	switch p.dialect {
	case Postgres:
		return true, nil
	case SQLite:
		var enabled int
		if err := p.db.QueryRowContext(ctx, "SELECT sqlite_compileoption_used('ENABLE_FTS5')").Scan(&enabled); err != nil {
			return false, fmt.Errorf("failed to query sqlite compile options: %w", err)
		}
		return enabled == 1, nil
	default:
		return p.mysqlFullText(ctx, table)
	}
}

func (p *SQLProbe) mysqlFullText(ctx context.Context, table string) (bool, error) {
	engine, err := p.tableEngine(ctx, table)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(engine) {
	case "myisam", "aria":
		return true, nil
	case "innodb":
	default:
		return false, nil
	}

	var version string
	if err := p.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return false, fmt.Errorf("failed to query server version: %w", err)
	}
	return innoDBFullText(version), nil
}

func (p *SQLProbe) tableEngine(ctx context.Context, table string) (string, error) {
	var engine sql.NullString
	err := p.db.QueryRowContext(ctx,
		"SELECT ENGINE FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?",
		table,
	).Scan(&engine)
	if err == nil && engine.Valid {
		return engine.String, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to query engine of %s: %w", table, err)
	}

	var fallback string
	if err := p.db.QueryRowContext(ctx, "SELECT @@default_storage_engine").Scan(&fallback); err != nil {
		return "", fmt.Errorf("failed to query default storage engine: %w", err)
	}
	return fallback, nil
}

// innoDBFullText reports whether the server version supports InnoDB
// full-text indexes: MySQL 5.6.4 and MariaDB 10.0.5 onwards.
func innoDBFullText(version string) bool {
	floor := [3]int{5, 6, 4}
	if strings.Contains(strings.ToLower(version), "mariadb") {
		floor = [3]int{10, 0, 5}
	}
	return versionAtLeast(version, floor)
}

func versionAtLeast(version string, floor [3]int) bool {
	core := version
	if i := strings.IndexFunc(core, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")

	for i := 0; i < 3; i++ {
		n := 0
		if i < len(parts) {
			n, _ = strconv.Atoi(parts[i])
		}
		if n != floor[i] {
			return n > floor[i]
		}
	}
	return true
}
