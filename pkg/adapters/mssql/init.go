// Package mssql provides a SQL Server database adapter for leaptds.
//
// This file registers the SQL Server adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/leaptds/pkg/adapters/mssql"
package mssql

import (
	"log/slog"

	"github.com/leapstack-labs/leaptds/pkg/adapter"
)

func init() {
	adapter.Register("mssql", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
	adapter.Register("sqlserver", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
