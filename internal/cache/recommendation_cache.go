package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

const (
	recommendationKeyPrefix  = "recommendation::latest::"
	DefaultRecommendationTTL = 24 * time.Hour
)

// RecommendationCache keeps the latest recommendation of every subject in redis.
type RecommendationCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRecommendationCache(rdb redis.Cmdable, ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	return &RecommendationCache{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get returns nil, nil on a cache miss.
func (c *RecommendationCache) Get(ctx context.Context, subjectID string) (_ *adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.recommendation.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := c.rdb.Get(ctx, recommendationKeyPrefix+subjectID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec adaptation.Recommendation
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal cached recommendation: %w", err)
	}
	return &rec, nil
}

func (c *RecommendationCache) Set(ctx context.Context, rec *adaptation.Recommendation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.recommendation.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	recBytes, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	return c.rdb.Set(ctx, recommendationKeyPrefix+rec.SubjectID, recBytes, c.ttl).Err()
}

func (c *RecommendationCache) Invalidate(ctx context.Context, subjectID string) error {
	return c.rdb.Del(ctx, recommendationKeyPrefix+subjectID).Err()
}
