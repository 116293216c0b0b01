package repository

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

var _ domain.ResourceRepository = (*CachedResourceRepository)(nil)

const resourceListTTL = 30 * time.Minute

// CachedResourceRepository keeps each user's resource list in Redis.
// Every write goes to next first and then drops the user's key.
type CachedResourceRepository struct {
	next  domain.ResourceRepository
	cache *redis.Client
}

func NewCachedResourceRepository(next domain.ResourceRepository, cache *redis.Client) *CachedResourceRepository {
	return &CachedResourceRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedResourceRepository) cacheKey(userID string) string {
	return fmt.Sprintf("resources:%s", userID)
}

func (r *CachedResourceRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate resources for user %s: %v", userID, err)
	}
}

func (r *CachedResourceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Resource, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var resources []*domain.Resource
		if err := json.Unmarshal(val, &resources); err == nil {
			return resources, nil
		}
		log.Printf("[CACHE] Corrupted resource list for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	resources, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resources); err == nil {
		if setErr := r.cache.Set(ctx, key, data, resourceListTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return resources, nil
}

func (r *CachedResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	if err := r.next.Create(ctx, res); err != nil {
		return err
	}
	r.invalidate(ctx, res.UserID)
	return nil
}

func (r *CachedResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	if err := r.next.Update(ctx, res); err != nil {
		return err
	}
	r.invalidate(ctx, res.UserID)
	return nil
}

func (r *CachedResourceRepository) Delete(ctx context.Context, id string, userID string) error {
	if err := r.next.Delete(ctx, id, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
