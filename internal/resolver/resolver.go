// Package resolver turns object names into J2000 sky coordinates.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a resolver has no position for a name.
var ErrNotFound = errors.New("object not resolved")

// Resolver resolves an object name to equatorial coordinates.
type Resolver interface {
	Resolve(ctx context.Context, name string) (astro.Equatorial, error)
}

// Finder looks up catalog objects by name. Both catalog.Store and
// catalog.Cache implement it.
type Finder interface {
	Object(ctx context.Context, name string) (models.Object, error)
}

// CatalogResolver reads positions from the local catalog.
type CatalogResolver struct {
	finder Finder
}

// NewCatalogResolver creates a resolver backed by the catalog.
func NewCatalogResolver(finder Finder) *CatalogResolver {
	return &CatalogResolver{finder: finder}
}

// Resolve implements Resolver.
func (r *CatalogResolver) Resolve(ctx context.Context, name string) (astro.Equatorial, error) {
	o, err := r.finder.Object(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return astro.Equatorial{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return astro.Equatorial{}, fmt.Errorf("looking up %s: %w", name, err)
	}
	if !o.HasPosition {
		return astro.Equatorial{}, fmt.Errorf("%w: %s has no catalog position", ErrNotFound, name)
	}
	return astro.Equatorial{RA: o.RA, Dec: o.Dec}, nil
}

// Chain tries each resolver in order and returns the first position found.
type Chain struct {
	resolvers []Resolver
	logger    *zap.Logger
}

// NewChain creates a chained resolver.
func NewChain(logger *zap.Logger, resolvers ...Resolver) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{resolvers: resolvers, logger: logger}
}

// Resolve implements Resolver. It returns ErrNotFound only when every
// resolver reported not found; other failures are joined.
func (c *Chain) Resolve(ctx context.Context, name string) (astro.Equatorial, error) {
	var errs []error
	for _, r := range c.resolvers {
		pos, err := r.Resolve(ctx, name)
		if err == nil {
			return pos, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return astro.Equatorial{}, ctxErr
		}
		c.logger.Debug("resolver failed, trying next", zap.String("name", name), zap.Error(err))
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return astro.Equatorial{}, errors.Join(errs...)
	}
	return astro.Equatorial{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Kinds accepted by New.
const (
	KindCatalog = "catalog"
	KindSesame  = "sesame"
	KindChain   = "chain"
)

// Options configures New.
type Options struct {
	Kind      string
	SesameURL string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// New builds the resolver named by opts.Kind. The chain kind tries the
// catalog first and falls back to Sesame.
func New(finder Finder, opts Options) (Resolver, error) {
	switch opts.Kind {
	case "", KindCatalog:
		return NewCatalogResolver(finder), nil
	case KindSesame:
		return NewSesameResolver(opts.SesameURL, opts.Timeout, opts.Logger), nil
	case KindChain:
		return NewChain(opts.Logger,
			NewCatalogResolver(finder),
			NewSesameResolver(opts.SesameURL, opts.Timeout, opts.Logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown resolver %q (want catalog, sesame or chain)", opts.Kind)
	}
}
