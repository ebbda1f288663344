// Package assets reads asset files from a set of search directories and
// keeps their contents in an in-memory cache.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/robotview/internal/logger"
)

// Manager loads files by path. Relative paths are searched in the
// registered roots, last added first, then relative to the working
// directory.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex

	retries    int
	retryDelay time.Duration
	readFile   func(string) ([]byte, error)
}

// NewManager creates a manager that retries failed reads up to retries
// times, waiting retryDelay between attempts. Missing files are never
// retried.
func NewManager(retries int, retryDelay time.Duration) *Manager {
	return &Manager{
		cache:      NewCache(),
		retries:    max(retries, 0),
		retryDelay: retryDelay,
		readFile:   os.ReadFile,
	}
}

// AddRoot adds a search directory.
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
}

// Load reads a file, serving repeated reads of the same path from cache.
func (m *Manager) Load(ctx context.Context, path string) ([]byte, error) {
	resolved := m.resolve(path)
	if data, ok := m.cache.Get(resolved); ok {
		return data, nil
	}

	data, err := m.readWithRetry(ctx, resolved)
	if err != nil {
		return nil, err
	}
	m.cache.Set(resolved, data)
	return data, nil
}

// resolve picks the first root containing path, falling back to path
// itself.
func (m *Manager) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Clean(path)
}

func (m *Manager) readWithRetry(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying asset read",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.retryDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := m.readFile(path)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	return nil, fmt.Errorf("reading asset %s: %w", path, lastErr)
}

// Clear drops all cached files.
func (m *Manager) Clear() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
