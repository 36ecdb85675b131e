package template

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/VoidMesh/worldstream/internal/logging"
)

// Cache builds each world template at most once and shares it afterwards.
//
// Reads go through an atomically published copy-on-write map and take no
// lock. The first caller for a name builds while holding the build lock;
// concurrent first callers for any name wait for it and then find the
// published entry. Waiting honours ctx. Templates are never evicted for the
// lifetime of the process.
type Cache struct {
	loader    Loader
	logger    logging.LoggerInterface
	buildLock *semaphore.Weighted
	published atomic.Pointer[map[string]*WorldTemplate]
}

// NewCache creates a template cache backed by the given loader.
func NewCache(loader Loader, logger logging.LoggerInterface) *Cache {
	c := &Cache{
		loader:    loader,
		logger:    logger.With("component", "template-cache"),
		buildLock: semaphore.NewWeighted(1),
	}
	empty := make(map[string]*WorldTemplate)
	c.published.Store(&empty)
	return c
}

// Get returns a published template without triggering a build.
func (c *Cache) Get(worldName string) (*WorldTemplate, bool) {
	tmpl, ok := (*c.published.Load())[worldName]
	return tmpl, ok
}

// GetOrBuild returns the template for worldName, building it on first use.
// Build failures are returned as *TemplateLoadError and are not cached.
func (c *Cache) GetOrBuild(ctx context.Context, worldName string) (*WorldTemplate, error) {
	if tmpl, ok := c.Get(worldName); ok {
		return tmpl, nil
	}

	if err := c.buildLock.Acquire(ctx, 1); err != nil {
		return nil, &TemplateLoadError{World: worldName, Err: err}
	}
	defer c.buildLock.Release(1)

	if tmpl, ok := c.Get(worldName); ok {
		return tmpl, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &TemplateLoadError{World: worldName, Err: err}
	}

	start := time.Now()
	c.logger.Debug("Building world template", "world", worldName)

	tmpl, err := c.loader.LoadTemplate(ctx, worldName)
	if err != nil {
		c.logger.Error("Failed to build world template", "world", worldName, "error", err)
		return nil, &TemplateLoadError{World: worldName, Err: err}
	}
	if tmpl == nil {
		return nil, &TemplateLoadError{World: worldName, Err: ErrTemplateNotFound}
	}
	if err := tmpl.Validate(); err != nil {
		c.logger.Error("Rejected malformed world template", "world", worldName, "error", err)
		return nil, &TemplateLoadError{World: worldName, Err: err}
	}
	if tmpl.Name == "" {
		tmpl.Name = worldName
	}

	current := *c.published.Load()
	next := make(map[string]*WorldTemplate, len(current)+1)
	for name, t := range current {
		next[name] = t
	}
	next[worldName] = tmpl
	c.published.Store(&next)

	c.logger.Info("World template published",
		"world", worldName,
		"width", tmpl.Width,
		"height", tmpl.Height,
		"layers", len(tmpl.Layers),
		"duration", time.Since(start),
	)
	return tmpl, nil
}

// Len returns the number of published templates.
func (c *Cache) Len() int {
	return len(*c.published.Load())
}

// Names returns the published world names, sorted.
func (c *Cache) Names() []string {
	current := *c.published.Load()
	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
