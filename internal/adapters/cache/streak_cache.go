package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const streakTTL = time.Hour

// RedisStreakCache keeps one hash per user, keyed by the caller's calendar
// date, so clients in different time zones never read each other's result.
type RedisStreakCache struct {
	rdb *redis.Client
}

func NewRedisStreakCache(rdb *redis.Client) *RedisStreakCache {
	return &RedisStreakCache{rdb: rdb}
}

func streakKey(userID string) string {
	return fmt.Sprintf("streaks:%s", userID)
}

func (c *RedisStreakCache) Get(ctx context.Context, userID string, today time.Time) (domain.StreakResult, bool) {
	val, err := c.rdb.HGet(ctx, streakKey(userID), domain.DateKey(today)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Streak read error for user %s: %v", userID, err)
		}
		return domain.StreakResult{}, false
	}

	var result domain.StreakResult
	if err := json.Unmarshal(val, &result); err != nil {
		log.Printf("[CACHE] Corrupted streak entry for user %s, cleaning up key", userID)
		c.Invalidate(ctx, userID)
		return domain.StreakResult{}, false
	}
	return result, true
}

func (c *RedisStreakCache) Set(ctx context.Context, userID string, today time.Time, result domain.StreakResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	key := streakKey(userID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, domain.DateKey(today), data)
		pipe.Expire(ctx, key, streakTTL)
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Streak write error for user %s: %v", userID, err)
	}
}

func (c *RedisStreakCache) Invalidate(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, streakKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate streaks for user %s: %v", userID, err)
	}
}
