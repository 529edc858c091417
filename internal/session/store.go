package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fitcoin-app/fitcoin/internal/domain"
)

// ErrNoSession indicates that a transaction requires a logged-in user.
var ErrNoSession = errors.New("no active session")

var mutationRecorder = func(op string, snap *Snapshot) {}

// RegisterMutationRecorder allows external packages to observe committed
// store transactions.
func RegisterMutationRecorder(recorder func(op string, snap *Snapshot)) {
	if recorder == nil {
		mutationRecorder = func(string, *Snapshot) {}
		return
	}

	mutationRecorder = recorder
}

// Store owns the authoritative session snapshot. All mutation goes
// through its compound transactions; each transaction persists the
// candidate snapshot first and commits to memory only on success, so a
// failed persist never leaves ledger and history inconsistent.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	storage Storage
	log     *slog.Logger
}

// NewStore creates a Store over the given persistence backend.
func NewStore(storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		storage: storage,
		log:     log,
	}
}

// Rehydrate loads the persisted snapshot at process start. A missing
// snapshot is not an error; the session simply starts signed out.
func (s *Store) Rehydrate(ctx context.Context) error {
	snap, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil
		}

		return fmt.Errorf("rehydrate session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = *snap.Clone()
	s.snap.IsConnected = true
	s.snap.IsTracking = false

	s.log.Info("session rehydrated",
		slog.String("user_id", snap.User.ID),
		slog.Int64("balance", snap.Coins.Balance),
		slog.Int("activities", len(snap.Activities)),
	)

	return nil
}

// Snapshot returns a consistent copy of the whole session state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.Clone()
}

// User returns the current identity, or nil when signed out.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.User == nil {
		return nil
	}

	user := *s.snap.User
	return &user
}

// Coins returns the current ledger.
func (s *Store) Coins() domain.Coin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.Coins
}

// Activities returns a copy of the full history in chronological order.
func (s *Store) Activities() []domain.ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ActivityRecord, len(s.snap.Activities))
	copy(out, s.snap.Activities)
	return out
}

// IsConnected reports whether a user session is active.
func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.IsConnected
}

// IsTracking reports whether an activity is being tracked.
func (s *Store) IsTracking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.IsTracking
}

// SetTracking flips the tracking flag. The flag is ephemeral and never
// persisted.
func (s *Store) SetTracking(tracking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.IsTracking = tracking
}

// Login replaces the whole snapshot and its persisted copy.
func (s *Store) Login(ctx context.Context, user *domain.User, coins domain.Coin, activities []domain.ActivityRecord) error {
	if user == nil {
		return errors.New("login requires a user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := Snapshot{
		User:        user,
		Coins:       coins,
		Activities:  activities,
		IsConnected: true,
		IsTracking:  false,
	}

	if err := s.storage.Save(ctx, &candidate); err != nil {
		return fmt.Errorf("persist login: %w", err)
	}

	s.snap = *candidate.Clone()

	s.log.Info("session opened", slog.String("user_id", user.ID), slog.String("username", user.Username))
	mutationRecorder("login", &s.snap)

	return nil
}

// Logout clears the snapshot and the persisted copy. Idempotent: a
// second call on a cleared session is a no-op with the same result.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}

	s.snap = Snapshot{}

	s.log.Info("session closed")
	mutationRecorder("logout", &s.snap)

	return nil
}

// CompleteActivity appends the finalized record and credits the ledger
// by coinsEarned in one transaction. No intermediate state is observable
// and nothing is committed when persistence fails.
func (s *Store) CompleteActivity(ctx context.Context, record domain.ActivityRecord, coinsEarned int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.User == nil {
		return ErrNoSession
	}

	credited, err := s.snap.Coins.Credit(coinsEarned)
	if err != nil {
		return fmt.Errorf("credit ledger: %w", err)
	}

	candidate := s.snap
	candidate.Coins = credited
	candidate.Activities = append(append([]domain.ActivityRecord{}, s.snap.Activities...), record)

	if err := s.storage.Save(ctx, &candidate); err != nil {
		return fmt.Errorf("persist activity: %w", err)
	}

	s.snap = candidate

	s.log.Info("activity completed",
		slog.String("activity_id", record.ID),
		slog.Int64("calories", record.CaloriesBurned),
		slog.Int64("coins_earned", coinsEarned),
		slog.Int64("balance", credited.Balance),
	)
	mutationRecorder("complete_activity", &s.snap)

	return nil
}

// Purchase debits the ledger by the item cost and persists the spend.
// Fails with domain.ErrInsufficientFunds when the balance is inadequate,
// leaving the ledger untouched. The item itself is not granted here.
func (s *Store) Purchase(ctx context.Context, item domain.MarketplaceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.User == nil {
		return ErrNoSession
	}

	debited, err := s.snap.Coins.Debit(item.CoinCost)
	if err != nil {
		return fmt.Errorf("purchase %q: %w", item.ID, err)
	}

	candidate := s.snap
	candidate.Coins = debited

	if err := s.storage.Save(ctx, &candidate); err != nil {
		return fmt.Errorf("persist purchase: %w", err)
	}

	s.snap = candidate

	s.log.Info("item purchased",
		slog.String("item_id", item.ID),
		slog.Int64("cost", item.CoinCost),
		slog.Int64("balance", debited.Balance),
	)
	mutationRecorder("purchase", &s.snap)

	return nil
}
