package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

// KeptTables are never truncated
var KeptTables = []string{"schema_migrations"}

var validTableName = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// DatabaseCleaner empties the tables of a test database between tests
type DatabaseCleaner struct {
	db   *sql.DB
	keep map[string]bool
}

// OpenDatabaseCleaner connects to the MySQL database named by dsn
func OpenDatabaseCleaner(ctx context.Context, dsn string) (*DatabaseCleaner, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", DatabaseDSNEnv, err)
	}
	if cfg.DBName == "" {
		return nil, errors.New("database name missing from " + DatabaseDSNEnv)
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return NewDatabaseCleaner(db), nil
}

// NewDatabaseCleaner wraps an open database
func NewDatabaseCleaner(db *sql.DB) *DatabaseCleaner {
	keep := make(map[string]bool)
	for _, table := range KeptTables {
		keep[table] = true
	}
	return &DatabaseCleaner{db: db, keep: keep}
}

// Tables lists the base tables of the current database
func (c *DatabaseCleaner) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Clean truncates every table except the kept ones. Foreign key checks are
// disabled on the connection while truncating.
func (c *DatabaseCleaner) Clean(ctx context.Context) error {
	tables, err := c.Tables(ctx)
	if err != nil {
		return err
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return fmt.Errorf("disable foreign key checks: %w", err)
	}
	defer conn.ExecContext(context.Background(), "SET FOREIGN_KEY_CHECKS = 1")

	for _, table := range tables {
		if c.keep[table] {
			continue
		}
		if !validTableName.MatchString(table) {
			return fmt.Errorf("invalid table name: %s", table)
		}
		if _, err := conn.ExecContext(ctx, "TRUNCATE TABLE `"+table+"`"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the connection pool
func (c *DatabaseCleaner) Close() error {
	return c.db.Close()
}
