// internal/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/metrics"
	"renovation-matching/internal/matching"
	"renovation-matching/internal/models"

	"github.com/redis/go-redis/v9"
)

const RosterCacheKey = "matching:companies:eligible"

// CachedCompanyRepository keeps the eligible roster in Redis for ttl. Redis
// failures fall through to the wrapped repository; they never fail a lookup.
type CachedCompanyRepository struct {
	inner  matching.CompanyRepository
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCompanyRepository(inner matching.CompanyRepository, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedCompanyRepository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedCompanyRepository{
		inner:  inner,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "company-cache"}),
	}
}

func (r *CachedCompanyRepository) ListEligible(ctx context.Context) ([]models.Company, error) {
	if companies, ok := r.get(ctx); ok {
		return companies, nil
	}

	companies, err := r.inner.ListEligible(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(companies)
	if err == nil {
		err = r.redis.Set(ctx, RosterCacheKey, data, r.ttl).Err()
	}
	if err != nil {
		r.logger.Warn("failed to cache company roster", map[string]interface{}{"error": err})
	}
	return companies, nil
}

func (r *CachedCompanyRepository) get(ctx context.Context) ([]models.Company, bool) {
	val, err := r.redis.Get(ctx, RosterCacheKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RosterCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.RosterCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("roster cache unavailable", map[string]interface{}{"error": err})
		return nil, false
	}

	var companies []models.Company
	if err := json.Unmarshal(val, &companies); err != nil {
		metrics.RosterCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("discarding unreadable roster cache entry", map[string]interface{}{"error": err})
		return nil, false
	}
	metrics.RosterCacheLookups.WithLabelValues("hit").Inc()
	return companies, true
}

// Invalidate drops the cached roster so the next lookup reads the source.
func (r *CachedCompanyRepository) Invalidate(ctx context.Context) error {
	return r.redis.Del(ctx, RosterCacheKey).Err()
}
