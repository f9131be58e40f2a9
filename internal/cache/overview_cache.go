// item360-backend/internal/cache/overview_cache.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	overviewKeyPrefix     = "item360:overview"
	overviewScanBatchSize = 100
)

type OverviewCache interface {
	Get(ctx context.Context, query domain.OverviewQuery) (*domain.ItemOverview, bool, error)
	Set(ctx context.Context, query domain.OverviewQuery, overview *domain.ItemOverview) error
	Invalidate(ctx context.Context, query domain.OverviewQuery) error
	InvalidateAll(ctx context.Context) error
}

type redisOverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopOverviewCache struct{}

func NewOverviewCache(cfg config.CacheConfig) (OverviewCache, error) {
	if !cfg.Enabled {
		return &noopOverviewCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisOverviewCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopOverviewCache() OverviewCache {
	return &noopOverviewCache{}
}

func (c *redisOverviewCache) Get(ctx context.Context, query domain.OverviewQuery) (*domain.ItemOverview, bool, error) {
	key := buildOverviewKey(query)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var overview domain.ItemOverview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, fmt.Errorf("decode overview cache: %w", err)
	}

	return &overview, true, nil
}

func (c *redisOverviewCache) Set(ctx context.Context, query domain.OverviewQuery, overview *domain.ItemOverview) error {
	key := buildOverviewKey(query)
	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("encode overview cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisOverviewCache) Invalidate(ctx context.Context, query domain.OverviewQuery) error {
	return c.client.Del(ctx, buildOverviewKey(query)).Err()
}

func (c *redisOverviewCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, overviewKeyPrefix, overviewScanBatchSize)
}

func (n *noopOverviewCache) Get(ctx context.Context, query domain.OverviewQuery) (*domain.ItemOverview, bool, error) {
	return nil, false, nil
}

func (n *noopOverviewCache) Set(ctx context.Context, query domain.OverviewQuery, overview *domain.ItemOverview) error {
	return nil
}

func (n *noopOverviewCache) Invalidate(ctx context.Context, query domain.OverviewQuery) error {
	return nil
}

func (n *noopOverviewCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildOverviewKey(query domain.OverviewQuery) string {
	return fmt.Sprintf("%s:%s:%s", overviewKeyPrefix, query.ItemCode, overviewQueryHash(query))
}

// overviewQueryHash folds every query field into the key so two different
// queries never share an entry. Parts are sorted for stable hashing.
func overviewQueryHash(query domain.OverviewQuery) string {
	parts := []string{
		"company=" + strings.TrimSpace(query.Company),
		"consumption_days=" + strconv.Itoa(query.ConsumptionDays),
		"history_limit=" + strconv.Itoa(query.HistoryLimit),
		"lead_time_receipts=" + strconv.Itoa(query.LeadTimeReceipts),
	}

	if query.Branch != "" {
		parts = append(parts, "branch="+strings.TrimSpace(query.Branch))
	}
	if query.Supplier != "" {
		parts = append(parts, "supplier="+strings.TrimSpace(query.Supplier))
	}
	if query.Warehouse != "" {
		parts = append(parts, "warehouse="+strings.TrimSpace(query.Warehouse))
	}
	if query.POName != "" {
		parts = append(parts, "po_name="+strings.TrimSpace(query.POName))
	}
	if query.POBaseRate != nil {
		parts = append(parts, fmt.Sprintf("po_base_rate=%.6f", *query.POBaseRate))
	}
	if query.POUOM != "" {
		parts = append(parts, "po_uom="+strings.TrimSpace(query.POUOM))
	}
	if query.POConversionFactor != nil {
		parts = append(parts, fmt.Sprintf("po_conversion_factor=%.6f", *query.POConversionFactor))
	}
	if query.PriceVarThreshPct != 0 {
		parts = append(parts, fmt.Sprintf("price_var_thresh_pct=%.2f", query.PriceVarThreshPct))
	}
	if query.CoverOverstockDays != 0 {
		parts = append(parts, fmt.Sprintf("cover_overstock_days=%.2f", query.CoverOverstockDays))
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
