package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/composition"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/telemetry/metrics"
)

// derived metrics never go stale for the same input, the ttl only frees memory
const compositionCacheExpire = 6 * 60 * 60

var _ Cache = (*freecache.Cache)(nil)

// CompositionCache memoizes composition.Compute by (subject id, input hash).
type CompositionCache struct {
	cache          Cache
	metricsManager *metrics.Manager
}

func NewCompositionCache(sizeMB int, metricsManager *metrics.Manager) *CompositionCache {
	if sizeMB <= 0 {
		sizeMB = 16
	}
	return NewCompositionCacheWith(freecache.NewCache(sizeMB*megabyte), metricsManager)
}

func NewCompositionCacheWith(cache Cache, metricsManager *metrics.Manager) *CompositionCache {
	return &CompositionCache{
		cache:          cache,
		metricsManager: metricsManager,
	}
}

// Compute returns the derived metrics of the record, computing them on a miss.
// Validation errors are returned and never cached.
func (c *CompositionCache) Compute(record measurements.Record, sex bodystats.Sex) (composition.Metrics, error) {
	hash, err := InputHash(record, sex)
	if err != nil {
		return composition.Metrics{}, err
	}
	key := []byte(fmt.Sprintf("composition::%s::%s", record.SubjectID, hash))

	if cached, err := c.cache.Get(key); err == nil {
		var m composition.Metrics
		if err := json.Unmarshal(cached, &m); err == nil {
			c.metricsManager.CounterCompositionCache.WithLabelValues("hit").Inc()
			return m, nil
		}
		log.Errorf("composition cache: unmarshal cached metrics for [%s]: %s", record.SubjectID, err)
	}
	c.metricsManager.CounterCompositionCache.WithLabelValues("miss").Inc()

	m, err := composition.Compute(record, sex)
	if err != nil {
		return composition.Metrics{}, err
	}

	mBytes, err := json.Marshal(m)
	if err != nil {
		log.Errorf("composition cache: marshal metrics for [%s]: %s", record.SubjectID, err)
		return m, nil
	}
	if err := c.cache.Set(key, mBytes, compositionCacheExpire); err != nil {
		log.Warnf("composition cache: set [%s]: %s", key, err)
	}

	return m, nil
}

func (c *CompositionCache) Clear() {
	c.cache.Clear()
}

// InputHash fingerprints everything Compute depends on.
func InputHash(record measurements.Record, sex bodystats.Sex) (string, error) {
	input := struct {
		Record measurements.Record `json:"record"`
		Sex    bodystats.Sex       `json:"sex"`
	}{
		Record: record,
		Sex:    sex,
	}
	inputBytes, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal composition input: %w", err)
	}
	sum := sha256.Sum256(inputBytes)
	return hex.EncodeToString(sum[:16]), nil
}
