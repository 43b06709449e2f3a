package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CachedReviews is a read-through redis cache over a ReviewStore. Review
// aggregates change slowly and are read on every matcher/recommender scoring
// pass, so a short TTL takes most of that load off the review store. Cache
// failures fall through to the backing store.
type CachedReviews struct {
	store  ReviewStore
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedReviews(store ReviewStore, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedReviews {
	return &CachedReviews{store: store, client: client, ttl: ttl, logger: logger}
}

func reviewKey(clinicID uuid.UUID) string {
	return "review-summary:" + clinicID.String()
}

func (c *CachedReviews) Summary(ctx context.Context, clinicID uuid.UUID) (*ReviewSummary, error) {
	key := reviewKey(clinicID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached ReviewSummary
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
		// corrupt entry, drop it
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("clinic_id", clinicID.String()).Msg("review cache read failed")
	}

	summary, err := c.store.Summary(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(summary); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("clinic_id", clinicID.String()).Msg("review cache write failed")
		}
	}

	return summary, nil
}

// Invalidate drops the cached aggregate for a clinic.
func (c *CachedReviews) Invalidate(ctx context.Context, clinicID uuid.UUID) error {
	return c.client.Del(ctx, reviewKey(clinicID)).Err()
}
