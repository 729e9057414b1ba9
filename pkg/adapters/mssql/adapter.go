// Package mssql provides a SQL Server database adapter for leaptds.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	mssqldb "github.com/denisenkom/go-mssqldb"
	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/leapstack-labs/leaptds/pkg/adapters/mssql/dialect"
)

// DefaultPort is the SQL Server TCP port.
const DefaultPort = 1433

// Adapter implements the adapter.Adapter interface for SQL Server.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new SQL Server adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Name returns the registered adapter type.
func (a *Adapter) Name() string {
	return "mssql"
}

// Open connects to SQL Server and returns the handle with its dialect.
func (a *Adapter) Open(ctx context.Context, cfg adapter.Config) (*adapter.Handle, error) {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	d, err := NewDialect(params)
	if err != nil {
		return nil, err
	}

	connector, err := mssqldb.NewConnector(buildDSN(cfg, params))
	if err != nil {
		return nil, fmt.Errorf("failed to create mssql connector: %w", err)
	}
	connector.SessionInitSQL = params.SessionInitSQL()

	a.logger.Debug("connecting to mssql",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.Int("textsize", params.TextSize))

	db := sql.OpenDB(connector)
	if params.MaxOpenConns > 0 {
		db.SetMaxOpenConns(params.MaxOpenConns)
	}
	if params.MaxIdleConns > 0 {
		db.SetMaxIdleConns(params.MaxIdleConns)
	}
	if params.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(params.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mssql: %w", err)
	}

	return &adapter.Handle{DB: db, Dialect: d}, nil
}

// NewDialect builds the literal rules selected by params.
func NewDialect(params *Params) (*dialect.Dialect, error) {
	loc, err := dialect.ParseLocation(params.Timezone)
	if err != nil {
		return nil, err
	}
	return &dialect.Dialect{Unicode: params.Unicode(), Location: loc}, nil
}

// buildDSN constructs a sqlserver:// connection URL.
func buildDSN(cfg adapter.Config, params *Params) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	u := &url.URL{Scheme: "sqlserver"}
	if cfg.Instance != "" {
		// Named instances are resolved through the browser service, not a port.
		u.Host = host
		u.Path = cfg.Instance
	} else {
		port := cfg.Port
		if port == 0 {
			port = DefaultPort
		}
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	if params.AppName != "" {
		q.Set("app name", params.AppName)
	}
	if params.ConnTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(params.ConnTimeout))
	}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
