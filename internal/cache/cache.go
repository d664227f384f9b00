// Package cache keeps prepared data in memory, keyed by the identity of
// the input files it was built from.
package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadFunc builds the cached value from the input files.
type LoadFunc[V any] func() (V, error)

// Options configure a Cache.
type Options struct {
	// Enabled keeps values between calls. When false every Get reloads.
	Enabled bool

	Logger *zap.Logger
}

// Stats tracks cache performance metrics.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Loads         int64 `json:"loads"`
	Invalidations int64 `json:"invalidations"`
}

type entry[V any] struct {
	key   string
	value V
	memo  *Memo
}

// Cache holds one value derived from a fixed set of input files. A value is
// reused while the size and modification time of every input are unchanged.
// With a watcher running, file system events drop it eagerly.
type Cache[V any] struct {
	paths   []string
	load    LoadFunc[V]
	enabled bool
	logger  *zap.Logger

	mu      sync.Mutex
	current *entry[V]
	stats   Stats
	group   singleflight.Group

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a cache over the given input files.
func New[V any](paths []string, load LoadFunc[V], opts Options) *Cache[V] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[V]{
		paths:   paths,
		load:    load,
		enabled: opts.Enabled,
		logger:  logger,
	}
}

// Get returns the value for the current state of the inputs, loading it
// when the inputs changed. Concurrent callers share a single load.
// The returned Memo belongs to the value and is dropped with it.
func (c *Cache[V]) Get() (V, *Memo, error) {
	var zero V

	key, err := keyFor(c.paths)
	if err != nil {
		return zero, nil, err
	}

	if c.enabled {
		c.mu.Lock()
		if c.current != nil && c.current.key == key {
			c.stats.Hits++
			e := c.current
			c.mu.Unlock()
			return e.value, e.memo, nil
		}
		c.stats.Misses++
		stale := c.current != nil
		c.mu.Unlock()

		if stale {
			c.logger.Info("inputs changed, reloading", zap.String("key", key))
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := c.load()
		if err != nil {
			return nil, err
		}
		e := &entry[V]{key: key, value: value, memo: newMemo()}

		c.mu.Lock()
		c.stats.Loads++
		if c.enabled {
			c.current = e
		}
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return zero, nil, fmt.Errorf("load: %w", err)
	}

	e := v.(*entry[V])
	return e.value, e.memo, nil
}

// Invalidate drops the cached value.
func (c *Cache[V]) Invalidate(reason string) {
	c.mu.Lock()
	dropped := c.current != nil
	c.current = nil
	if dropped {
		c.stats.Invalidations++
	}
	c.mu.Unlock()

	if dropped {
		c.logger.Info("cache invalidated", zap.String("reason", reason))
	}
}

// Stats returns current cache statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Watch starts invalidating on file system events. The directories of the
// inputs are watched so that files replaced by rename are still seen.
func (c *Cache[V]) Watch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		return errors.New("cache is already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	names := make(map[string]struct{}, len(c.paths))
	dirs := make(map[string]struct{}, len(c.paths))
	for _, p := range c.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		names[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	c.watcher = watcher
	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.watchLoop(watcher, names, c.done)

	c.logger.Debug("watching inputs", zap.Strings("paths", c.paths))
	return nil
}

func (c *Cache[V]) watchLoop(watcher *fsnotify.Watcher, names map[string]struct{}, done <-chan struct{}) {
	defer c.wg.Done()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if _, watched := names[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&relevant != 0 {
				c.Invalidate(event.String())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher, if any.
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	watcher := c.watcher
	done := c.done
	c.watcher = nil
	c.done = nil
	c.mu.Unlock()

	if watcher == nil {
		return nil
	}

	close(done)
	err := watcher.Close()
	c.wg.Wait()
	return err
}
