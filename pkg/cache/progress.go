// Package cache provides a redis-backed daily-progress store so the
// scheduler's counters survive multi-process deployments.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/avezina/flashdeck/pkg/config"
	"github.com/avezina/flashdeck/pkg/scheduler"
	"github.com/google/uuid"
)

// Keys carry the day, so correctness comes from the key itself; the TTL only
// bounds memory for abandoned counters.
const progressTTL = 48 * time.Hour

type ProgressStore struct {
	rdb *goredis.Client
}

func NewProgressStore(cfg config.RedisConfig) (*ProgressStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &ProgressStore{rdb: rdb}, nil
}

func (s *ProgressStore) Close() error {
	return s.rdb.Close()
}

func (s *ProgressStore) Progress(ctx context.Context, userID uuid.UUID, day string) (scheduler.DayProgress, error) {
	values, err := s.rdb.MGet(ctx,
		progressKey(userID, day, scheduler.CountNewCard),
		progressKey(userID, day, scheduler.CountReview),
	).Result()
	if err != nil {
		return scheduler.DayProgress{}, err
	}
	return scheduler.DayProgress{
		NewCardsToday: parseCount(values[0]),
		ReviewsToday:  parseCount(values[1]),
	}, nil
}

func (s *ProgressStore) Increment(ctx context.Context, userID uuid.UUID, day string, kind scheduler.CountKind) error {
	key := progressKey(userID, day, kind)
	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, progressTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func progressKey(userID uuid.UUID, day string, kind scheduler.CountKind) string {
	return fmt.Sprintf("progress:%s:%s:%s", userID, day, kind)
}

func parseCount(value interface{}) int {
	raw, ok := value.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
