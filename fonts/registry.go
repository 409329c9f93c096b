package fonts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pbc/styles"
)

// Source fetches font asset metadata by ID, typically from the asset service.
type Source interface {
	FontAsset(ctx context.Context, id string) (FontAsset, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id string) (FontAsset, error)

func (f SourceFunc) FontAsset(ctx context.Context, id string) (FontAsset, error) {
	return f(ctx, id)
}

const defaultCacheSize = 128

// Registry is a read-through cache over a font asset source. Concurrent
// lookups of the same ID share one upstream fetch; resolved assets stay
// cached up to the size limit, evicting the oldest entry first. Errors are
// never cached.
type Registry struct {
	source Source
	log    *zap.Logger
	group  singleflight.Group

	mu    sync.Mutex
	cache map[string]FontAsset
	order []string
	size  int
}

// NewRegistry returns a registry over the given source. A cacheSize <= 0
// selects the default.
func NewRegistry(source Source, cacheSize int, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Registry{
		source: source,
		log:    log.Named("fonts"),
		cache:  make(map[string]FontAsset, cacheSize),
		size:   cacheSize,
	}
}

// Asset resolves a font asset by ID through the cache.
func (r *Registry) Asset(ctx context.Context, id string) (FontAsset, error) {
	if id == "" {
		return FontAsset{}, errors.New("empty font asset id")
	}

	r.mu.Lock()
	if a, ok := r.cache[id]; ok {
		r.mu.Unlock()
		return a, nil
	}
	r.mu.Unlock()

	v, err, shared := r.group.Do(id, func() (any, error) {
		a, err := r.source.FontAsset(ctx, id)
		if err != nil {
			return FontAsset{}, fmt.Errorf("fetching font asset %s: %w", id, err)
		}
		r.mu.Lock()
		r.store(id, a)
		r.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return FontAsset{}, err
	}
	if shared {
		r.log.Debug("font asset fetch shared", zap.String("asset", id))
	}
	return v.(FontAsset), nil
}

// store inserts under the lock, evicting the oldest entries when full.
func (r *Registry) store(id string, a FontAsset) {
	if _, ok := r.cache[id]; ok {
		r.cache[id] = a
		return
	}
	for len(r.cache) >= r.size && len(r.order) > 0 {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[id] = a
	r.order = append(r.order, id)
}

// Face resolves a font asset into a loadable CSS face. It implements
// styles.FontResolver.
func (r *Registry) Face(ctx context.Context, id string) (styles.FontFace, error) {
	a, err := r.Asset(ctx, id)
	if err != nil {
		return styles.FontFace{}, err
	}
	if a.URL == "" {
		return styles.FontFace{}, fmt.Errorf("font asset %s has no url", id)
	}
	return styles.FontFace{
		Family: a.FamilyName(),
		URL:    a.URL,
		Format: a.Format.String(),
	}, nil
}
