package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

var _ domain.DailyLogRepository = (*CachedDailyLogRepository)(nil)

// CachedDailyLogRepository caches the hot recent-log list the client
// re-reads on every dashboard view. Range queries and counts go
// straight through: the batch job must never see stale data.
type CachedDailyLogRepository struct {
	next  domain.DailyLogRepository
	cache *redis.Client
}

func NewCachedDailyLogRepository(next domain.DailyLogRepository, cache *redis.Client) *CachedDailyLogRepository {
	return &CachedDailyLogRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedDailyLogRepository) cacheKey(userID string, limit int) string {
	return fmt.Sprintf("logs:%s:%d", userID, limit)
}

func (r *CachedDailyLogRepository) invalidate(ctx context.Context, userID string) {
	iter := r.cache.Scan(ctx, 0, fmt.Sprintf("logs:%s:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.cache.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[CACHE] Failed to invalidate %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("[CACHE] Failed to scan keys for user %s: %v", userID, err)
	}
}

func (r *CachedDailyLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.DailyLog, error) {
	key := r.cacheKey(userID, limit)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var logs []*domain.DailyLog
		if err := json.Unmarshal([]byte(val), &logs); err == nil {
			return logs, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	logs, err := r.next.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(logs); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return logs, nil
}

func (r *CachedDailyLogRepository) Upsert(ctx context.Context, dailyLog *domain.DailyLog) error {
	if err := r.next.Upsert(ctx, dailyLog); err != nil {
		return err
	}
	r.invalidate(ctx, dailyLog.UserID)
	return nil
}

func (r *CachedDailyLogRepository) Delete(ctx context.Context, userID, date string) error {
	if err := r.next.Delete(ctx, userID, date); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedDailyLogRepository) GetByDate(ctx context.Context, userID, date string) (*domain.DailyLog, error) {
	return r.next.GetByDate(ctx, userID, date)
}

func (r *CachedDailyLogRepository) ListRange(ctx context.Context, userID, start, end string) ([]*domain.DailyLog, error) {
	return r.next.ListRange(ctx, userID, start, end)
}

func (r *CachedDailyLogRepository) CountSince(ctx context.Context, userID, since string) (int, error) {
	return r.next.CountSince(ctx, userID, since)
}
