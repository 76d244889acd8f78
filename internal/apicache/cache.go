// Package apicache memoizes one scheduler client per cluster for the
// lifetime of a command invocation.
package apicache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/cluster"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"golang.org/x/sync/singleflight"
)

// Factory constructs the client for one cluster. It may dial and authenticate.
type Factory func(ctx context.Context, desc cluster.Descriptor) (scheduler.Client, error)

// Cache hands out one client per cluster. Handles are created on first use,
// never evicted, and closed together by Close.
type Cache struct {
	registry *cluster.Registry
	factory  Factory

	mu      sync.RWMutex
	handles map[string]scheduler.Client
	group   singleflight.Group
	closed  bool
}

// New creates an empty cache over the given registry.
func New(registry *cluster.Registry, factory Factory) *Cache {
	return &Cache{
		registry: registry,
		factory:  factory,
		handles:  make(map[string]scheduler.Client),
	}
}

// Get returns the client for the named cluster, constructing it on first use.
// Concurrent first calls for the same cluster share one construction.
// A failed construction is not cached.
func (c *Cache) Get(ctx context.Context, name string) (scheduler.Client, error) {
	c.mu.RLock()
	h, ok := c.handles[name]
	closed := c.closed
	c.mu.RUnlock()
	if ok {
		return h, nil
	}
	if closed {
		return nil, clierr.CommandFailure("api handle cache is closed")
	}

	desc, ok := c.registry.Get(name)
	if !ok {
		return nil, clierr.InvalidParameter("Unknown cluster: %s", name)
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		h, ok := c.handles[name]
		c.mu.RUnlock()
		if ok {
			return h, nil
		}

		h, err := c.factory(ctx, desc)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			closedErr := clierr.CommandFailure("api handle cache is closed")
			if err := h.Close(); err != nil {
				return nil, errors.Join(closedErr, fmt.Errorf("failed to close handle for cluster %s: %w", name, err))
			}
			return nil, closedErr
		}
		c.handles[name] = h
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(scheduler.Client), nil
}

// Len returns the number of live handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Close closes every handle. The cache cannot be used afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[string]scheduler.Client)
	c.closed = true
	c.mu.Unlock()

	var errs []error
	for name, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close handle for cluster %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
