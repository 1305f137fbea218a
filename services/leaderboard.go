// services/leaderboard.go
package services

import (
	"task-reward-system/models"

	"gorm.io/gorm"
)

// Default page sizes for the two boards.
const (
	DefaultScoreLimit    = 20
	DefaultReferralLimit = 10
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// LeaderboardEntry is a derived, read-only row. Ranks start at 1.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Value      int64  `json:"value"`
}

// TopByWeeklyScore ranks users by the rotating weekly score. Ties break
// on the earlier account creation so the ordering is stable between
// reads. Reads current committed state; no caching.
func (s *LeaderboardService) TopByWeeklyScore(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultScoreLimit
	}
	var users []models.User
	if err := s.DB.Order("weekly_score DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:       i + 1,
			Identifier: u.Identifier,
			Username:   u.Username,
			Value:      u.WeeklyScore,
		}
	}
	return entries, nil
}

// TopByWeeklyReferrals is the same ranking over the weekly referral
// counter.
func (s *LeaderboardService) TopByWeeklyReferrals(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultReferralLimit
	}
	var users []models.User
	if err := s.DB.Order("weekly_referral_count DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:       i + 1,
			Identifier: u.Identifier,
			Username:   u.Username,
			Value:      u.WeeklyReferralCount,
		}
	}
	return entries, nil
}
