package session

import (
	"time"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// TodayStats aggregates the activities that fall on one local calendar
// day. Matching is by calendar date, not a rolling 24h window.
type TodayStats struct {
	Activities []domain.ActivityRecord `json:"activities"`
	Calories   int64                   `json:"calories"`
	Coins      int64                   `json:"coins"`
}

// LifetimeStats aggregates the whole history.
type LifetimeStats struct {
	TotalActivities int   `json:"total_activities"`
	TotalCalories   int64 `json:"total_calories"`
	AvgCalories     int64 `json:"avg_calories"`
}

// Today filters the history down to records on the same local day as now
// and sums their calories and coins.
func (s *Store) Today(now time.Time) TodayStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := TodayStats{Activities: []domain.ActivityRecord{}}

	for _, record := range s.snap.Activities {
		if !record.SameLocalDay(now) {
			continue
		}

		stats.Activities = append(stats.Activities, record)
		stats.Calories += record.CaloriesBurned
		stats.Coins += record.CoinsEarned
	}

	return stats
}

// Lifetime aggregates every recorded activity. The average divides by
// max(total, 1) so an empty history yields zero rather than a panic.
func (s *Store) Lifetime() LifetimeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := LifetimeStats{TotalActivities: len(s.snap.Activities)}

	for _, record := range s.snap.Activities {
		stats.TotalCalories += record.CaloriesBurned
	}

	divisor := int64(stats.TotalActivities)
	if divisor < 1 {
		divisor = 1
	}
	stats.AvgCalories = stats.TotalCalories / divisor

	return stats
}

// Recent returns up to limit most recent activities, newest first.
func (s *Store) Recent(limit int) []domain.ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.snap.Activities)
	if limit <= 0 || limit > total {
		limit = total
	}

	out := make([]domain.ActivityRecord, 0, limit)
	for i := total - 1; i >= total-limit; i-- {
		out = append(out, s.snap.Activities[i])
	}

	return out
}
