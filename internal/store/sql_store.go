package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"supplyscore/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Backend identifies the SQL database holding the artifact table.
type Backend string

const (
	SQLiteBackend     Backend = "sqlite"
	PostgreSQLBackend Backend = "postgres"
	MySQLBackend      Backend = "mysql"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLStore keeps the artifact as a single row of a key/value table.
type SQLStore struct {
	db      *sql.DB
	backend Backend
	table   string
	key     string
}

// NewSQLStore opens the database, verifies the connection and creates the artifact table
// when it does not exist yet.
//
// dsn formats:
//   - sqlite: path of the database file
//   - postgres: host=localhost port=5432 user=postgres dbname=scores
//   - mysql: user:password@tcp(host:port)/dbname (MySQL 5.7+ or MariaDB)
func NewSQLStore(ctx context.Context, backend Backend, dsn, table, key string) (*SQLStore, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	if key == "" {
		key = DefaultKey
	}

	var driverName string
	switch backend {
	case SQLiteBackend:
		driverName = "sqlite"
	case PostgreSQLBackend:
		driverName = "pgx"
	case MySQLBackend:
		driverName = "mysql"
	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, postgres or mysql", backend)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}

	s := &SQLStore{db: db, backend: backend, table: table, key: key}
	if _, err := db.ExecContext(ctx, s.createTableQuery()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return s, nil
}

func (s *SQLStore) location() string {
	return fmt.Sprintf("%s:%s/%s", s.backend, s.table, s.key)
}

// Save upserts the artifact row in a single statement.
func (s *SQLStore) Save(ctx context.Context, m *model.Model) error {
	data, err := encode(s.location(), m)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), s.key, data, time.Now().UTC().Unix()); err != nil {
		return &StorageError{Op: "save", Location: s.location(), Err: err}
	}
	return nil
}

// Load reads the artifact row. A missing row yields ErrNotFound.
func (s *SQLStore) Load(ctx context.Context) (*model.Model, error) {
	query := fmt.Sprintf(`SELECT artifact FROM %s WHERE artifact_key = %s`, s.quotedTable(), s.placeholder(1))

	var data []byte
	err := s.db.QueryRowContext(ctx, query, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Location: s.location(), Err: err}
	}
	return decode(s.location(), data)
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) createTableQuery() string {
	switch s.backend {
	case MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key VARCHAR(255) PRIMARY KEY,
				artifact LONGBLOB NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, s.quotedTable())

	case PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key TEXT PRIMARY KEY,
				artifact BYTEA NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, s.quotedTable())

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key TEXT PRIMARY KEY,
				artifact BLOB NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`, s.quotedTable())
	}
}

func (s *SQLStore) upsertQuery() string {
	switch s.backend {
	case MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (artifact_key, artifact, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE artifact = VALUES(artifact), updated_at = VALUES(updated_at)`, s.quotedTable())

	case PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (artifact_key, artifact, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (artifact_key) DO UPDATE SET artifact = EXCLUDED.artifact, updated_at = EXCLUDED.updated_at`, s.quotedTable())

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (artifact_key, artifact, updated_at) VALUES (?, ?, ?)`, s.quotedTable())
	}
}

func (s *SQLStore) placeholder(n int) string {
	if s.backend == PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) quotedTable() string {
	if s.backend == MySQLBackend {
		return "`" + s.table + "`"
	}
	return `"` + s.table + `"`
}

// validateTableName rejects names that would need escaping inside SQL statements.
func validateTableName(name string) error {
	if name == "" {
		return errors.New("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}
