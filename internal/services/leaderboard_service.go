package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mealmart/internal/caching"
	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

const (
	defaultLeaderboardLimit = 100
	leaderboardCacheTTL     = 5 * time.Minute
)

type LeaderboardServiceInterface interface {
	Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	Refresh(ctx context.Context) error
}

type leaderboardService struct {
	userRepo repositories.UserRepository
	cache    caching.CacheService
	logger   *zap.Logger
}

func NewLeaderboardService(userRepo repositories.UserRepository, cache caching.CacheService, logger *zap.Logger) LeaderboardServiceInterface {
	return &leaderboardService{userRepo: userRepo, cache: cache, logger: logger}
}

// Top returns users ranked by points, served from cache when warm. A cache
// outage degrades to the store rather than failing the request.
func (s *leaderboardService) Top(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultLeaderboardLimit
	}

	entries, err := s.cache.GetLeaderboard(ctx, limit)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, caching.ErrCacheMiss) {
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
	}

	entries, err = s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, common.StoreError("load leaderboard", err)
	}

	if err := s.cache.SetLeaderboard(ctx, limit, entries, leaderboardCacheTTL); err != nil {
		s.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
	return entries, nil
}

// Refresh warms the default leaderboard page. Run periodically by the
// background scheduler.
func (s *leaderboardService) Refresh(ctx context.Context) error {
	entries, err := s.userRepo.Leaderboard(ctx, defaultLeaderboardLimit)
	if err != nil {
		return common.StoreError("refresh leaderboard", err)
	}
	return s.cache.SetLeaderboard(ctx, defaultLeaderboardLimit, entries, leaderboardCacheTTL)
}
