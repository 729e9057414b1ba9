package core

import "context"

// Escaper escapes text for embedding inside a single-quoted SQL string literal.
type Escaper interface {
	Escape(s string) string
}

// Literalizer renders a Go value as SQL literal text in a connection's dialect.
type Literalizer interface {
	Literal(v any) (string, error)
}

// Dialect bundles the escaping and literal rules of one server type.
type Dialect interface {
	Escaper
	Literalizer
}

// Cursor is the result handle of one executed batch. A batch can produce
// several result sets; NextResultSet advances between them.
type Cursor interface {
	// Columns returns the column names of the current result set.
	Columns() ([]string, error)

	// Next advances to the next row of the current result set.
	Next() bool

	// Values returns the values of the current row.
	Values() ([]any, error)

	// NextResultSet advances to the next result set.
	NextResultSet() bool

	// Err returns the error, if any, encountered during iteration.
	Err() error

	// Close releases the cursor.
	Close() error
}

// Conn is one borrowed database connection. It is owned by a Pool and is only
// valid until the release function returned by Pool.Acquire is called.
type Conn interface {
	Dialect

	// Execute sends raw SQL to the server and returns its cursor.
	Execute(ctx context.Context, sql string) (Cursor, error)

	// IsActive reports whether the connection is still usable.
	IsActive(ctx context.Context) bool

	// Pending reports whether results of the last Execute remain unread.
	Pending() bool

	// CancelPending cancels unread results so the connection can be reused.
	CancelPending() error
}

// Pool hands out connections keyed by a logical server name.
type Pool interface {
	// Acquire borrows a connection. The release function must be called
	// exactly once when the caller is done with the connection.
	Acquire(ctx context.Context, server string) (Conn, func(), error)
}

// ServerConfig holds configuration for connecting to one logical server.
type ServerConfig struct {
	Type     string            `koanf:"type"` // mssql
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Instance string            `koanf:"instance"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Options  map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g. textsize, app_name)
	Params map[string]any `koanf:"params"`
}
