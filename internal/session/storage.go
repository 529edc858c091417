package session

import (
	"context"
	"errors"
)

// Storage keys map to serialized snapshots of the corresponding entities.
const (
	KeyUser       = "user"
	KeyCoins      = "coins"
	KeyActivities = "activities"
)

// ErrSnapshotNotFound indicates that no persisted session exists.
var ErrSnapshotNotFound = errors.New("no persisted session snapshot")

// Storage is the key-value persistence contract behind the store. Save
// writes the user, coins and activities entries together; Load reads
// them back at process start; Clear removes all three.
type Storage interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Clear(ctx context.Context) error
}
