package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ngmaloney/astroscope/internal/models"
)

// Cache memoizes a Source's objects for one catalog version.
//
// Every read checks the source version; when it changes (for example after a
// re-import) the cached objects are reloaded. Invalidate forces a reload.
type Cache struct {
	src Source

	mu      sync.RWMutex
	version string
	objects   []models.Object
	byName    map[string]int
	byMessier map[string]int
}

// NewCache wraps a Source.
func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Objects returns the catalog for the current version. The returned slice is a copy.
func (c *Cache) Objects(ctx context.Context) ([]models.Object, error) {
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.objects), nil
}

// Lookup finds an object by designation or Messier number.
// Unlike Store.Object it never searches common names.
func (c *Cache) Lookup(ctx context.Context, name string) (models.Object, bool, error) {
	if err := c.refresh(ctx); err != nil {
		return models.Object{}, false, err
	}
	designation, messier := normalizeName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byName[designation]; ok {
		return c.objects[i], true, nil
	}
	if i, ok := c.byMessier[messier]; ok && messier != "" {
		return c.objects[i], true, nil
	}
	return models.Object{}, false, nil
}

// Object is Lookup with a catalog.ErrNotFound error for misses.
func (c *Cache) Object(ctx context.Context, name string) (models.Object, error) {
	o, ok, err := c.Lookup(ctx, name)
	if err != nil {
		return models.Object{}, err
	}
	if !ok {
		return models.Object{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return o, nil
}

// CommonNames returns the common names of an object, nil when unknown.
func (c *Cache) CommonNames(ctx context.Context, name string) ([]string, error) {
	o, ok, err := c.Lookup(ctx, name)
	if err != nil || !ok {
		return nil, err
	}
	return slices.Clone(o.CommonNames), nil
}

// Version returns the catalog version currently cached, "" before the first load.
func (c *Cache) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Invalidate drops the cached objects; the next read reloads from the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = ""
	c.objects = nil
	c.byName = nil
	c.byMessier = nil
}

func (c *Cache) refresh(ctx context.Context) error {
	version, err := c.src.Version(ctx)
	if err != nil {
		return err
	}

	c.mu.RLock()
	current := c.version == version && c.objects != nil
	c.mu.RUnlock()
	if current {
		return nil
	}

	objects, err := c.src.Objects(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]int, len(objects))
	byMessier := make(map[string]int)
	for i, o := range objects {
		byName[strings.ToUpper(o.Name)] = i
		if o.Messier == "" {
			continue
		}
		if _, seen := byMessier[o.Messier]; !seen {
			byMessier[o.Messier] = i
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
	c.objects = objects
	c.byName = byName
	c.byMessier = byMessier
	return nil
}
