package classify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mtlprog/balances/internal/domain"
)

const defaultLookupTimeout = 10 * time.Second

// Lookup answers whether an issued asset is conventionally displayed in stroops.
type Lookup interface {
	IsStroopAsset(ctx context.Context, asset domain.AssetInfo) (bool, error)
}

// Store persists classification answers across process restarts.
type Store interface {
	Get(ctx context.Context, assetKey string) (value bool, found bool, err error)
	Put(ctx context.Context, assetKey string, value bool) error
}

// Resolver classifies assets through an in-memory cache, an optional Store and a Lookup.
// It never returns an error: anything that prevents an answer yields false.
type Resolver struct {
	lookup  Lookup
	store   Store
	cache   *cache
	flight  singleflight.Group
	timeout time.Duration
}

// NewResolver creates a Resolver. store may be nil; timeout <= 0 uses a 10s default.
func NewResolver(lookup Lookup, store Store, timeout time.Duration) *Resolver {
	if lookup == nil {
		panic("classify.NewResolver: lookup is nil")
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Resolver{
		lookup:  lookup,
		store:   store,
		cache:   newCache(),
		timeout: timeout,
	}
}

// Classify implements balance.Classifier.
func (r *Resolver) Classify(ctx context.Context, assetKey string) bool {
	asset, err := domain.ParseAssetKey(assetKey)
	if err != nil {
		slog.Warn("classify: invalid asset key, assuming face value", "asset", assetKey, "error", err)
		return false
	}
	if asset.IsNative() {
		return false
	}

	if v, ok := r.cache.get(assetKey); ok {
		return v
	}

	// Callers asking for the same asset share one lookup. The lookup outlives
	// the caller's cancellation; a cancelled caller just stops waiting.
	ch := r.flight.DoChan(assetKey, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.resolve(lookupCtx, asset)
	})

	select {
	case <-ctx.Done():
		return false
	case res := <-ch:
		if res.Err != nil {
			slog.Warn("classify: lookup failed, assuming face value", "asset", assetKey, "error", res.Err)
			return false
		}
		return res.Val.(bool)
	}
}

func (r *Resolver) resolve(ctx context.Context, asset domain.AssetInfo) (bool, error) {
	key := asset.Key()

	if r.store != nil {
		v, found, err := r.store.Get(ctx, key)
		switch {
		case err != nil:
			slog.Warn("classify: store read failed", "asset", key, "error", err)
		case found:
			return r.cache.putIfAbsent(key, v), nil
		}
	}

	v, err := r.lookup.IsStroopAsset(ctx, asset)
	if err != nil {
		return false, err
	}
	v = r.cache.putIfAbsent(key, v)

	if r.store != nil {
		if err := r.store.Put(ctx, key, v); err != nil {
			slog.Warn("classify: store write failed", "asset", key, "error", err)
		}
	}
	return v, nil
}

// Cached returns the number of assets with a known classification.
func (r *Resolver) Cached() int {
	return r.cache.len()
}
