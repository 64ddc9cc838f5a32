package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vayungodara/lockin-sub000/internal/stats"
	"github.com/vayungodara/lockin-sub000/utils"
)

type StatsService struct {
	db      *pgxpool.Pool
	streaks *StreakService
}

func NewStatsService(db *pgxpool.Pool, streaks *StreakService) *StatsService {
	return &StatsService{db: db, streaks: streaks}
}

// GetUserStats aggregates the activity counters in one query and takes the
// streak numbers from the reconciled recompute rather than the raw cached
// row.
func (s *StatsService) GetUserStats(ctx context.Context, userID uuid.UUID, now time.Time, loc *time.Location) (*stats.UserStats, error) {
	query := `
	SELECT
		EXISTS (
			SELECT 1 FROM completion_events
			WHERE user_id = $1 AND completed_at::date = CURRENT_DATE
		) AS today_status,
		COALESCE(COUNT(DISTINCT ce.completed_at::date) FILTER (
			WHERE ce.completed_at >= DATE_TRUNC('week', CURRENT_DATE)), 0) AS days_this_week,
		COALESCE(COUNT(DISTINCT ce.completed_at::date) FILTER (
			WHERE ce.completed_at >= DATE_TRUNC('month', CURRENT_DATE)), 0) AS days_this_month,
		COALESCE(COUNT(DISTINCT ce.completed_at::date) FILTER (
			WHERE ce.completed_at >= DATE_TRUNC('year', CURRENT_DATE)), 0) AS days_this_year,
		COALESCE(COUNT(DISTINCT ce.completed_at::date), 0) AS total_active_days,
		COALESCE(COUNT(ce.id), 0) AS total_completed,
		COALESCE((SELECT SUM(duration_minutes) FROM focus_sessions WHERE user_id = $1), 0) AS total_focus_minutes
	FROM completion_events ce
	WHERE ce.user_id = $1
	`

	userStats := &stats.UserStats{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&userStats.TodayStatus,
		&userStats.DaysThisWeek,
		&userStats.DaysThisMonth,
		&userStats.DaysThisYear,
		&userStats.TotalActiveDays,
		&userStats.TotalCompleted,
		&userStats.TotalFocusMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	result, err := s.streaks.GetStreak(ctx, userID, now, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak for stats: %w", err)
	}
	userStats.CurrentStreak = result.CurrentStreak
	userStats.LongestStreak = result.LongestStreak

	userStats.ConsistencyScore = utils.CalculateConsistencyScore(
		userStats.CurrentStreak, userStats.TotalActiveDays, userStats.TotalFocusMinutes)

	return userStats, nil
}
