// Package session holds the authoritative in-memory session snapshot and
// the compound transactions the screens invoke. The store is the single
// writer; screens only read consistent copies.
package session

import (
	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// Snapshot is the full session state at a point in time. Activities are
// ordered by insertion, which is also chronological order.
type Snapshot struct {
	User        *domain.User            `json:"user"`
	Coins       domain.Coin             `json:"coins"`
	Activities  []domain.ActivityRecord `json:"activities"`
	IsConnected bool                    `json:"is_connected"`
	IsTracking  bool                    `json:"is_tracking"`
}

// Clone returns a deep copy safe to hand to readers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	copied := *s

	if s.User != nil {
		user := *s.User
		copied.User = &user
	}

	if s.Activities != nil {
		copied.Activities = make([]domain.ActivityRecord, len(s.Activities))
		copy(copied.Activities, s.Activities)
	}

	return &copied
}
