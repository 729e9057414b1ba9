// Package adapter provides database adapter interfaces and the connection
// pool used by leaptds's execution dispatcher.
//
// This package contains the public contract that all database adapters must
// implement. Concrete adapter implementations are in pkg/adapters/
// subdirectories and register themselves by name.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leaptds/pkg/core"
)

// Config is an alias for core.ServerConfig.
type Config = core.ServerConfig

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Name returns the registered adapter type.
	Name() string

	// Open opens a database handle for one logical server.
	Open(ctx context.Context, cfg Config) (*Handle, error)
}

// Handle is an open database together with the dialect rules of its server.
type Handle struct {
	DB      *sql.DB
	Dialect core.Dialect
}

// Close closes the underlying database.
func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	return h.DB.Close()
}
