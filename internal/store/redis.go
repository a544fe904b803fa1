package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/patient-summary-mcp-server/internal/domain"
)

const bundleKeyPrefix = "patient-summary:bundle:"

// RedisCache is a read-through cache in front of another bundle source, for
// deployments running several engine instances against shared bundle storage.
// Redis failures never fail a request: a circuit breaker trips after repeated
// errors and resolution degrades to the inner source until Redis recovers.
type RedisCache struct {
	inner   domain.BundleSource
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewRedisCache wraps a bundle source with a Redis read-through layer.
func NewRedisCache(inner domain.BundleSource, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-bundle-cache",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &RedisCache{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		breaker: breaker,
		logger:  logger,
	}
}

// Resolve returns cached bundle bytes when available, otherwise resolves
// through the inner source and populates the cache. Unknown patients are
// never cached, so a bundle added later is picked up immediately.
func (c *RedisCache) Resolve(ctx context.Context, patientID string) ([]byte, error) {
	key := bundleKeyPrefix + patientID

	// A miss is a successful lookup, not a breaker failure.
	cached, err := c.breaker.Execute(func() (interface{}, error) {
		content, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		return content, err
	})
	if err == nil && cached != nil {
		c.logger.WithField("patient_id", patientID).Debug("Bundle cache hit")
		return cached.([]byte), nil
	}
	if err != nil {
		c.logger.WithField("patient_id", patientID).WithError(err).Debug("Bundle cache unavailable")
	}

	content, err := c.inner.Resolve(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if _, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, content, c.ttl).Err()
	}); err != nil {
		c.logger.WithField("patient_id", patientID).WithError(err).Debug("Failed to populate bundle cache")
	}

	return content, nil
}

// Patients lists the identifiers of the inner source; the listing is not
// cached.
func (c *RedisCache) Patients() []string {
	return c.inner.Patients()
}
