package director

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const quotaTTL = 48 * time.Hour

type redisQuota struct {
	client *redis.Client
}

// NewRedisQuota stores counters under storycut:quota:<client>:<yyyy-mm-dd>.
func NewRedisQuota(client *redis.Client) Quota {
	return &redisQuota{client: client}
}

func (q *redisQuota) Use(ctx context.Context, clientID string, now time.Time) (int64, error) {
	key := quotaKey(clientID, now)

	pipe := q.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, quotaTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count request: %w", err)
	}
	return incr.Val(), nil
}

func quotaKey(clientID string, now time.Time) string {
	return fmt.Sprintf("storycut:quota:%s:%s", clientID, now.UTC().Format("2006-01-02"))
}
