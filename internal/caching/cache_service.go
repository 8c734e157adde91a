package caching

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mealmart/internal/models"
)

// ErrCacheMiss is returned when a key is absent; callers fall through to the
// store.
var ErrCacheMiss = errors.New("cache miss")

// CacheService fronts Redis for the hot read paths that do not need the
// relational store on every request.
type CacheService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	SetLeaderboard(ctx context.Context, limit int, entries []*models.LeaderboardEntry, ttl time.Duration) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func leaderboardKey(limit int) string {
	return "leaderboard:" + strconv.Itoa(limit)
}

func (s *redisCacheService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	raw, err := s.client.Get(ctx, leaderboardKey(limit)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var entries []*models.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *redisCacheService) SetLeaderboard(ctx context.Context, limit int, entries []*models.LeaderboardEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, leaderboardKey(limit), raw, ttl).Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
