package imagery

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/cropsight/cropsight/internal/metrics"
	"github.com/cropsight/cropsight/internal/repository"
)

// Cached wraps a Provider with a TTL cache for catalog lookups. Render and
// reduce pass straight through; only SelectScene and ListScenes responses are
// cached. Keys cover the selection policy, so changing it invalidates rows
// cached under the old policy. Store failures degrade to cache misses, they
// never fail a request.
type Cached struct {
	Provider
	store     repository.SceneStore
	ttl       time.Duration
	selection string
	wg        sync.WaitGroup
}

func NewCached(p Provider, store repository.SceneStore, ttl time.Duration, selection string) *Cached {
	return &Cached{Provider: p, store: store, ttl: ttl, selection: selection}
}

func (c *Cached) SelectScene(ctx context.Context, bounds orb.Bound, window Window) (Scene, error) {
	key := cacheKey("select", c.selection, bounds, window)
	var scene Scene
	if c.lookup(ctx, key, &scene) {
		return scene, nil
	}
	scene, err := c.Provider.SelectScene(ctx, bounds, window)
	if err != nil {
		return Scene{}, err
	}
	c.save(ctx, key, scene)
	return scene, nil
}

func (c *Cached) ListScenes(ctx context.Context, bounds orb.Bound, window Window) ([]Scene, error) {
	key := cacheKey("list", c.selection, bounds, window)
	var scenes []Scene
	if c.lookup(ctx, key, &scenes) {
		return scenes, nil
	}
	scenes, err := c.Provider.ListScenes(ctx, bounds, window)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, scenes)
	return scenes, nil
}

// StartPurge begins evicting expired rows on the given interval until ctx is
// cancelled.
func (c *Cached) StartPurge(ctx context.Context, interval time.Duration) {
	c.wg.Add(1)
	go c.runPurge(ctx, interval)
}

// Stop waits for the purge loop to exit.
func (c *Cached) Stop() {
	c.wg.Wait()
}

func (c *Cached) runPurge(ctx context.Context, interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := c.store.PurgeExpired(ctx, time.Now())
			if err != nil {
				slog.Error("Scene cache purge failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Debug("Scene cache purged", "evicted", purged)
			}
		}
	}
}

func (c *Cached) lookup(ctx context.Context, key string, out any) bool {
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Scene cache read failed", "error", err)
		return false
	}
	if !ok {
		metrics.SceneCacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		slog.Warn("Scene cache entry corrupt", "key", key, "error", err)
		return false
	}
	metrics.SceneCacheHitsTotal.Inc()
	return true
}

func (c *Cached) save(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Put(ctx, key, payload, time.Now().Add(c.ttl)); err != nil {
		slog.Warn("Scene cache write failed", "error", err)
	}
}

func cacheKey(op, selection string, bounds orb.Bound, window Window) string {
	raw := fmt.Sprintf("%s|%s|%.6f,%.6f,%.6f,%.6f|%d|%d",
		op, selection, bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1],
		window.Start.Unix(), window.End.Unix())
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
