package order

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Additional-Code/vendordesk/internal/format"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

// lookupTimeout bounds a shared lookup once it no longer follows any
// caller's context.
const lookupTimeout = 15 * time.Second

var errEmptyName = errors.New("menu item has no name")

// ItemLookup resolves a menu item by id.
type ItemLookup interface {
	GetMenuItem(ctx context.Context, menuItemID int64) (*upstream.MenuItem, error)
}

// NameCache maps menu item ids to display names for the life of the process.
// Only successful lookups are stored, so a failed id is retried next time.
type NameCache struct {
	lookup ItemLookup
	logger *zap.Logger

	mu    sync.RWMutex
	names map[int64]string
	group singleflight.Group

	lookups metric.Int64Counter
}

// NewNameCache builds an empty NameCache.
func NewNameCache(lookup ItemLookup, logger *zap.Logger) *NameCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	lookups, _ := otel.Meter(instrumentationName).Int64Counter(
		"vendordesk.name_cache.lookups",
		metric.WithDescription("Menu item name resolutions by result"),
	)
	return &NameCache{
		lookup:  lookup,
		logger:  logger,
		names:   make(map[int64]string),
		lookups: lookups,
	}
}

// Resolve returns the name for id. It never fails: when the lookup errors the
// fallback label is returned instead.
func (c *NameCache) Resolve(ctx context.Context, id int64) string {
	if name, ok := c.Cached(id); ok {
		c.record(ctx, "hit")
		return name
	}

	// The shared lookup outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		item, err := c.lookup.GetMenuItem(lookupCtx, id)
		if err != nil {
			return "", err
		}
		if item == nil || item.Name == "" {
			return "", errEmptyName
		}

		c.mu.Lock()
		c.names[id] = item.Name
		c.mu.Unlock()
		return item.Name, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}
	v, err := res.Val, res.Err
	if err != nil {
		c.logger.Debug("menu item name lookup failed", zap.Int64("menu_item_id", id), zap.Error(err))
		c.record(ctx, "fallback")
		return format.ItemFallbackLabel(id)
	}

	c.record(ctx, "miss")
	return v.(string)
}

// Cached returns the stored name for id without touching the network.
func (c *NameCache) Cached(id int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

// Len reports how many names are cached.
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

func (c *NameCache) record(ctx context.Context, result string) {
	if c.lookups != nil {
		c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
