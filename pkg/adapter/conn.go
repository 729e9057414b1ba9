package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaptds/pkg/core"
)

// SQLConn is a core.Conn over one reserved database/sql connection.
type SQLConn struct {
	conn    *sql.Conn
	dialect core.Dialect
	logger  *slog.Logger

	cursor *sqlCursor
	cancel context.CancelFunc
}

// NewSQLConn wraps conn. If logger is nil, a discard logger is used.
func NewSQLConn(conn *sql.Conn, d core.Dialect, logger *slog.Logger) *SQLConn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLConn{conn: conn, dialect: d, logger: logger}
}

var _ core.Conn = (*SQLConn)(nil)

// Escape escapes s using the server's dialect.
func (c *SQLConn) Escape(s string) string {
	return c.dialect.Escape(s)
}

// Literal renders v using the server's dialect.
func (c *SQLConn) Literal(v any) (string, error) {
	return c.dialect.Literal(v)
}

// Execute sends sqlStr and returns a cursor over its results. Unread results
// of a previous Execute are cancelled first.
func (c *SQLConn) Execute(ctx context.Context, sqlStr string) (core.Cursor, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if c.Pending() {
		if err := c.CancelPending(); err != nil {
			c.logger.Warn("failed to cancel previous results", slog.String("error", err.Error()))
		}
	}

	qctx, cancel := context.WithCancel(ctx)
	//nolint:rowserrcheck // rows.Err() is checked by the cursor's consumer
	rows, err := c.conn.QueryContext(qctx, sqlStr)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	c.cancel = cancel
	c.cursor = &sqlCursor{rows: rows}
	return c.cursor, nil
}

// IsActive pings the server. It ignores cancellation of ctx so a cancelled
// call can still tell whether the connection survived.
func (c *SQLConn) IsActive(ctx context.Context) bool {
	if c.conn == nil {
		return false
	}
	return c.conn.PingContext(context.WithoutCancel(ctx)) == nil
}

// Pending reports whether the last cursor still has unread result sets.
func (c *SQLConn) Pending() bool {
	return c.cursor != nil && !c.cursor.closed && !c.cursor.exhausted
}

// CancelPending cancels the in-flight query and closes its cursor.
func (c *SQLConn) CancelPending() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.cursor == nil {
		return nil
	}
	err := c.cursor.Close()
	c.cursor = nil
	return err
}

// Close cancels unread results and returns the connection to its pool.
func (c *SQLConn) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.CancelPending(); err != nil {
		c.logger.Debug("failed to close cursor on release", slog.String("error", err.Error()))
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// sqlCursor is a core.Cursor over *sql.Rows.
type sqlCursor struct {
	rows      *sql.Rows
	exhausted bool
	closed    bool
}

func (c *sqlCursor) Columns() ([]string, error) {
	return c.rows.Columns()
}

func (c *sqlCursor) Next() bool {
	return c.rows.Next()
}

func (c *sqlCursor) Values() ([]any, error) {
	cols, err := c.rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return values, nil
}

func (c *sqlCursor) NextResultSet() bool {
	ok := c.rows.NextResultSet()
	if !ok {
		c.exhausted = true
	}
	return ok
}

func (c *sqlCursor) Err() error {
	return c.rows.Err()
}

func (c *sqlCursor) Close() error {
	c.closed = true
	return c.rows.Close()
}
