package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const unitsKey = "budget:units:all"

// CachedUnitRepository keeps the whole unit list in Redis.
type CachedUnitRepository struct {
	next   portsrepo.UnitRepositoryFacade
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ portsrepo.UnitRepositoryFacade = (*CachedUnitRepository)(nil)

// CachedUnitRepositoryOption is a functional option for configuring the cache
type CachedUnitRepositoryOption func(*CachedUnitRepository)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *slog.Logger) CachedUnitRepositoryOption {
	return func(c *CachedUnitRepository) {
		c.logger = logger
	}
}

// NewCachedUnitRepository wraps next. The caller owns client.
func NewCachedUnitRepository(next portsrepo.UnitRepositoryFacade, client *redis.Client, ttl time.Duration, opts ...CachedUnitRepositoryOption) *CachedUnitRepository {
	c := &CachedUnitRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedUnitRepository) ListUnits(ctx context.Context) ([]domain.OrganizationalUnit, error) {
	data, err := c.client.Get(ctx, unitsKey).Bytes()
	switch {
	case err == nil:
		var units []domain.OrganizationalUnit
		if uerr := json.Unmarshal(data, &units); uerr == nil {
			return units, nil
		}
		c.logger.WarnContext(ctx, "Dropping corrupted unit cache entry")
		_ = c.client.Del(ctx, unitsKey).Err()
	case errors.Is(err, redis.Nil):
		c.logger.DebugContext(ctx, "Unit cache miss")
	default:
		c.logger.WarnContext(ctx, "Unit cache read failed", slog.String("error", err.Error()))
	}

	units, err := c.next.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	if payload, merr := json.Marshal(units); merr == nil {
		if serr := c.client.Set(ctx, unitsKey, payload, c.ttl).Err(); serr != nil {
			c.logger.WarnContext(ctx, "Unit cache write failed", slog.String("error", serr.Error()))
		}
	}
	return units, nil
}

func (c *CachedUnitRepository) FindUnitByID(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error) {
	return c.next.FindUnitByID(ctx, unitID)
}

// SaveUnit writes through and invalidates the cached list.
func (c *CachedUnitRepository) SaveUnit(ctx context.Context, unit domain.OrganizationalUnit) error {
	if err := c.next.SaveUnit(ctx, unit); err != nil {
		return err
	}
	if err := c.client.Del(ctx, unitsKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "Unit cache invalidation failed", slog.String("error", err.Error()))
	}
	return nil
}
