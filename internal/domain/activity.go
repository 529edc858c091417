package domain

import "time"

// ActivityType enumerates the supported activity kinds.
type ActivityType string

const (
	ActivityWalking ActivityType = "walking"
	ActivityRunning ActivityType = "running"
	ActivityCycling ActivityType = "cycling"
	ActivityWorkout ActivityType = "workout"
)

// ActivityRecord is a finalized, immutable activity. Records are appended
// to the session history in chronological order and never modified.
type ActivityRecord struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	ActivityType   ActivityType `json:"activity_type"`
	DurationMin    int          `json:"duration_min"`
	CaloriesBurned int64        `json:"calories_burned"`
	CoinsEarned    int64        `json:"coins_earned"`
	Timestamp      time.Time    `json:"timestamp"`
}

// SameLocalDay reports whether the record's timestamp falls on the same
// local calendar day as t. Comparison is by calendar date, not a rolling
// 24h window.
func (a ActivityRecord) SameLocalDay(t time.Time) bool {
	ay, am, ad := a.Timestamp.Local().Date()
	ty, tm, td := t.Local().Date()
	return ay == ty && am == tm && ad == td
}
