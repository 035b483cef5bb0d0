// internal/services/leaderboard_service.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/cache"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

// LeaderboardService serves the ranked view of verified users by cumulative
// approved points. The denormalized users.points column is updated in the same
// transaction as every approval, so cache TTL is the only staleness window.
type LeaderboardService interface {
	Get(ctx context.Context, page, limit int) (*models.LeaderboardPage, error)
}

type leaderboardService struct {
	users   repositories.UserRepository
	cache   *cache.Store
	ttl     time.Duration
	timeout time.Duration
}

func NewLeaderboardService(users repositories.UserRepository, store *cache.Store, ttl, timeout time.Duration) LeaderboardService {
	return &leaderboardService{users: users, cache: store, ttl: ttl, timeout: timeout}
}

func (s *leaderboardService) Get(ctx context.Context, page, limit int) (*models.LeaderboardPage, error) {
	key := leaderboardKey(page, limit)
	if v, ok := s.cache.Get(key); ok {
		if p, ok := v.(*models.LeaderboardPage); ok {
			return p, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.users.Leaderboard(ctx, page*limit, limit)
	if err != nil {
		werr := upstream(err)
		if isTimeout(werr) {
			if v, ok := s.cache.GetStale(key); ok {
				if p, ok := v.(*models.LeaderboardPage); ok {
					log.Printf("[leaderboard][get][stale] store timeout, serving stale page=%d", page)
					return p, nil
				}
			}
		}
		return nil, werr
	}
	if rows == nil {
		rows = []models.LeaderboardRow{}
	}
	p := &models.LeaderboardPage{Items: rows, HasMore: len(rows) == limit}
	s.cache.Set(key, p, s.ttl)
	return p, nil
}
