package integration

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConnector is a database/sql driver that records executed
// statements and answers every query with a fixed table list.
type recordingConnector struct {
	mu         sync.Mutex
	statements []string
	tables     []string
}

func (c *recordingConnector) Connect(context.Context) (driver.Conn, error) {
	return &recordingConn{c: c}, nil
}

func (c *recordingConnector) Driver() driver.Driver { return recordingDriver{} }

func (c *recordingConnector) executed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.statements...)
}

type recordingDriver struct{}

func (recordingDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use the connector") }

type recordingConn struct{ c *recordingConnector }

func (rc *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return &recordingStmt{c: rc.c, query: query}, nil
}
func (rc *recordingConn) Close() error              { return nil }
func (rc *recordingConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions unsupported") }

type recordingStmt struct {
	c     *recordingConnector
	query string
}

func (s *recordingStmt) Close() error  { return nil }
func (s *recordingStmt) NumInput() int { return -1 }

func (s *recordingStmt) Exec([]driver.Value) (driver.Result, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.statements = append(s.c.statements, s.query)
	return driver.RowsAffected(0), nil
}

func (s *recordingStmt) Query([]driver.Value) (driver.Rows, error) {
	return &tableRows{tables: s.c.tables}, nil
}

type tableRows struct {
	tables []string
	i      int
}

func (r *tableRows) Columns() []string { return []string{"table_name"} }
func (r *tableRows) Close() error      { return nil }
func (r *tableRows) Next(dest []driver.Value) error {
	if r.i >= len(r.tables) {
		return io.EOF
	}
	dest[0] = r.tables[r.i]
	r.i++
	return nil
}

func TestDatabaseCleaner_Clean(t *testing.T) {
	connector := &recordingConnector{tables: []string{"orders", "schema_migrations", "users"}}
	cleaner := NewDatabaseCleaner(sql.OpenDB(connector))
	defer cleaner.Close()

	tables, err := cleaner.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "schema_migrations", "users"}, tables)

	require.NoError(t, cleaner.Clean(context.Background()))
	assert.Equal(t, []string{
		"SET FOREIGN_KEY_CHECKS = 0",
		"TRUNCATE TABLE `orders`",
		"TRUNCATE TABLE `users`",
		"SET FOREIGN_KEY_CHECKS = 1",
	}, connector.executed())
}

func TestDatabaseCleaner_RejectsOddTableNames(t *testing.T) {
	connector := &recordingConnector{tables: []string{"users`; DROP TABLE x"}}
	cleaner := NewDatabaseCleaner(sql.OpenDB(connector))
	defer cleaner.Close()

	err := cleaner.Clean(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
	assert.NotContains(t, connector.executed(), "TRUNCATE TABLE `users`; DROP TABLE x`")
}

func TestOpenDatabaseCleaner_InvalidDSN(t *testing.T) {
	_, err := OpenDatabaseCleaner(context.Background(), "not a dsn")
	assert.Error(t, err)

	_, err = OpenDatabaseCleaner(context.Background(), "root:secret@tcp(127.0.0.1:3306)/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database name missing")
}

func TestDetect_Disabled(t *testing.T) {
	t.Setenv(DatabaseDSNEnv, "")
	t.Setenv(NotifyEnv, "")

	caps := Detect(context.Background())
	assert.Nil(t, caps.DatabaseCleaner)
	assert.Nil(t, caps.Notifier)
}
