package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leaptds/pkg/core"
	"golang.org/x/sync/singleflight"
)

// Pool opens one database handle per configured server on first use and hands
// out reserved connections from it.
type Pool struct {
	servers map[string]core.ServerConfig
	logger  *slog.Logger

	mu      sync.RWMutex
	handles map[string]*Handle
	opening singleflight.Group
}

// NewPool creates a pool over the given servers, keyed by logical name.
// If logger is nil, a discard logger is used.
func NewPool(servers map[string]core.ServerConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pool{
		servers: servers,
		logger:  logger,
		handles: make(map[string]*Handle),
	}
}

var _ core.Pool = (*Pool)(nil)

// Acquire reserves a connection to server. The returned release function
// returns it to the pool; calling it more than once is a no-op.
func (p *Pool) Acquire(ctx context.Context, server string) (core.Conn, func(), error) {
	h, err := p.handle(ctx, server)
	if err != nil {
		return nil, nil, err
	}

	conn, err := h.DB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get connection: %w", err)
	}

	c := NewSQLConn(conn, h.Dialect, p.logger)
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := c.Close(); err != nil {
				p.logger.Warn("failed to release connection",
					slog.String("server", server), slog.String("error", err.Error()))
			}
		})
	}
	return c, release, nil
}

// Servers returns the configured server names (sorted).
func (p *Pool) Servers() []string {
	names := make([]string, 0, len(p.servers))
	for name := range p.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every opened handle.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, h := range p.handles {
		p.logger.Debug("closing database connection", slog.String("server", name))
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("server %s: %w", name, err))
		}
		delete(p.handles, name)
	}
	return errors.Join(errs...)
}

// handle returns the open handle for server, opening it once.
func (p *Pool) handle(ctx context.Context, server string) (*Handle, error) {
	p.mu.RLock()
	h, ok := p.handles[server]
	p.mu.RUnlock()
	if ok {
		return h, nil
	}

	cfg, ok := p.servers[server]
	if !ok {
		return nil, &UnknownServerError{Name: server, Available: p.Servers()}
	}

	v, err, _ := p.opening.Do(server, func() (any, error) {
		p.mu.RLock()
		h, ok := p.handles[server]
		p.mu.RUnlock()
		if ok {
			return h, nil
		}

		a, err := NewAdapter(cfg, p.logger)
		if err != nil {
			return nil, err
		}

		p.logger.Debug("opening database", slog.String("server", server), slog.String("type", cfg.Type))
		h, err = a.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open server %s: %w", server, err)
		}

		p.mu.Lock()
		p.handles[server] = h
		p.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// UnknownServerError is returned when a connection to an unconfigured server is requested.
type UnknownServerError struct {
	Name      string
	Available []string
}

func (e *UnknownServerError) Error() string {
	return fmt.Sprintf("unknown server %q\nConfigured servers: %v\nHint: Check the servers section in leaptds.yaml", e.Name, e.Available)
}
