package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect is the SQL flavour behind a DB.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// DB wraps a database/sql connection to one of the supported drivers.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	path    string // sqlite file, empty for network databases
}

// OpenSQLite opens (or creates) the SQLite file at dbPath.
func OpenSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer, a single connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return newDB(conn, SQLite, dbPath)
}

// Open connects to a network database. dsn is passed to the driver as is,
// except that MySQL DSNs get parseTime and clientFoundRows switched on.
func Open(dialect Dialect, dsn string) (*DB, error) {
	switch dialect {
	case SQLite:
		return OpenSQLite(dsn)
	case MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	case Postgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	return newDB(conn, dialect, "")
}

func newDB(conn *sql.DB, dialect Dialect, path string) (*DB, error) {
	db := &DB{conn: conn, dialect: dialect, path: path}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect reports which driver the DB talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Path returns the SQLite file, or "" for network databases.
func (db *DB) Path() string {
	return db.path
}

// rebind rewrites ? placeholders to $1, $2, ... for postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) migrate(ctx context.Context) error {
	var idType, textType, timeType string
	switch db.dialect {
	case Postgres:
		idType, textType, timeType = "VARCHAR(64)", "TEXT", "TIMESTAMPTZ"
	case MySQL:
		idType, textType, timeType = "VARCHAR(64)", "LONGTEXT", "DATETIME(6)"
	default:
		idType, textType, timeType = "TEXT", "TEXT", "DATETIME"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %[1]s PRIMARY KEY,
			title %[2]s NOT NULL,
			description %[2]s NOT NULL,
			created_at %[3]s NOT NULL,
			updated_at %[3]s NOT NULL
		)`, idType, textType, timeType),
		`CREATE INDEX idx_tasks_updated ON tasks(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.ExecContext(ctx, m); err != nil {
			// CREATE INDEX has no IF NOT EXISTS on MySQL; an existing index is fine
			if strings.HasPrefix(m, "CREATE INDEX") && isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", firstLine(m), err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
