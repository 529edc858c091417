// Package tracker implements the activity accrual engine: a two-state
// machine that converts tracked time into calories on a periodic tick
// and finalizes an activity record through the chain service on stop.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
)

const defaultTickInterval = time.Second

var (
	// ErrAlreadyTracking indicates Start was called while tracking.
	ErrAlreadyTracking = errors.New("activity tracking already in progress")
	// ErrNotTracking indicates Stop was called while idle.
	ErrNotTracking = errors.New("no activity tracking in progress")
)

// Progress is the live accumulator view shown by the dashboard.
type Progress struct {
	State          State `json:"state"`
	ElapsedSeconds int   `json:"elapsed_seconds"`
	CaloriesBurned int64 `json:"calories_burned"`
	CoinsEarning   int64 `json:"coins_earning"`
}

// Tracker drives the accrual loop. Ticks are strictly sequential: the
// accumulator is guarded by the tracker mutex, and Stop cancels the tick
// context before finalizing, so no tick races the finalization.
type Tracker struct {
	mu             sync.Mutex
	state          State
	activityType   domain.ActivityType
	elapsedSeconds int
	calories       float64
	cancelTick     context.CancelFunc
	tickDone       chan struct{}

	store *session.Store
	chain chain.Service
	log   *slog.Logger

	interval time.Duration
	sampler  func() float64
	now      func() time.Time
	newID    func() string
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithInterval overrides the tick period. Used by tests.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.interval = d
	}
}

// WithSampler overrides the per-tick calorie increment source. The
// sampler must return a non-negative bounded value; the default draws
// from [0, 2) and stands in for real sensor input.
func WithSampler(sampler func() float64) Option {
	return func(t *Tracker) {
		t.sampler = sampler
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithIDGenerator overrides record ID generation. Used by tests.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) {
		t.newID = newID
	}
}

// New constructs an idle Tracker bound to the session store and the
// chain service.
func New(store *session.Store, chainSvc chain.Service, log *slog.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = slog.Default()
	}

	t := &Tracker{
		state:    StateIdle,
		store:    store,
		chain:    chainSvc,
		log:      log,
		interval: defaultTickInterval,
		sampler:  func() float64 { return rand.Float64() * 2 },
		now:      time.Now,
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// State returns the current FSM state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Progress returns the live accumulator. Calories and the coin estimate
// are floored the way the finalized record will be.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Progress{
		State:          t.state,
		ElapsedSeconds: t.elapsedSeconds,
		CaloriesBurned: int64(t.calories),
		CoinsEarning:   chain.ConvertCalories(t.calories),
	}
}

// Start transitions Idle -> Tracking, resets the accumulator and starts
// the periodic tick. The tick context is detached from the request so
// navigation does not stop an active session.
func (t *Tracker) Start(ctx context.Context, activityType domain.ActivityType) error {
	if t.store.User() == nil {
		return session.ErrNoSession
	}

	if activityType == "" {
		activityType = domain.ActivityWorkout
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !IsTransitionAllowed(t.state, StateTracking) {
		return ErrAlreadyTracking
	}

	t.transitionLocked(StateTracking)
	t.activityType = activityType
	t.elapsedSeconds = 0
	t.calories = 0

	tickCtx, cancel := context.WithCancel(context.Background())
	t.cancelTick = cancel
	t.tickDone = make(chan struct{})

	go t.run(tickCtx, t.tickDone)

	t.store.SetTracking(true)
	t.log.Info("tracking started", slog.String("activity_type", string(activityType)))

	return nil
}

// Stop transitions Tracking -> Idle, cancelling the tick synchronously,
// then finalizes the accumulated activity. When no calories accrued, no
// record is created and no remote call is made. The finalize commit is
// detached from request cancellation: an in-flight conversion is awaited
// to completion even if the caller navigates away.
func (t *Tracker) Stop(ctx context.Context) (*domain.ActivityRecord, error) {
	t.mu.Lock()

	if !IsTransitionAllowed(t.state, StateIdle) {
		t.mu.Unlock()
		return nil, ErrNotTracking
	}

	t.cancelTick()
	t.cancelTick = nil
	done := t.tickDone
	t.tickDone = nil

	t.transitionLocked(StateIdle)

	elapsed := t.elapsedSeconds
	calories := t.calories
	activityType := t.activityType
	t.elapsedSeconds = 0
	t.calories = 0

	t.mu.Unlock()

	<-done
	t.store.SetTracking(false)

	t.log.Info("tracking stopped",
		slog.Int("elapsed_seconds", elapsed),
		slog.Float64("calories", calories),
	)

	if calories <= 0 {
		return nil, nil
	}

	return t.finalize(context.WithoutCancel(ctx), activityType, elapsed, calories)
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// tick advances the accumulator by one sample. A tick that fires while
// the state is no longer Tracking is dropped.
func (t *Tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateTracking {
		return
	}

	t.elapsedSeconds++
	t.calories += t.sampler()
	tickRecorder()
}

// finalize converts the accumulated calories through the chain service
// and commits the record and the credit in one store transaction. On any
// remote failure nothing is committed.
func (t *Tracker) finalize(ctx context.Context, activityType domain.ActivityType, elapsedSeconds int, calories float64) (*domain.ActivityRecord, error) {
	user := t.store.User()
	if user == nil {
		return nil, session.ErrNoSession
	}

	var coins int64
	err := apperr.WithRetry(ctx, func() error {
		earned, earnErr := t.chain.EarnCoins(ctx, user.ID, calories)
		if earnErr != nil {
			return apperr.NewRemoteOperationFailed("earn_coins", earnErr)
		}

		coins = earned
		return nil
	})
	if err != nil {
		t.log.Error("conversion failed, activity discarded", slog.Any("error", err))
		return nil, err
	}

	record := domain.ActivityRecord{
		ID:             t.newID(),
		UserID:         user.ID,
		ActivityType:   activityType,
		DurationMin:    elapsedSeconds / 60,
		CaloriesBurned: int64(calories),
		CoinsEarned:    coins,
		Timestamp:      t.now().UTC(),
	}

	err = apperr.WithRetry(ctx, func() error {
		verified, verifyErr := t.chain.VerifyActivity(ctx, record)
		if verifyErr != nil {
			return apperr.NewRemoteOperationFailed("verify_activity", verifyErr)
		}
		if !verified {
			return apperr.NewRemoteOperationFailed("verify_activity", errors.New("activity rejected"))
		}
		return nil
	})
	if err != nil {
		t.log.Error("verification failed, activity discarded", slog.Any("error", err))
		return nil, err
	}

	if err := t.store.CompleteActivity(ctx, record, coins); err != nil {
		return nil, fmt.Errorf("commit activity: %w", err)
	}

	return &record, nil
}

func (t *Tracker) transitionLocked(to State) {
	transitionRecorder(string(t.state), string(to))
	t.state = to
}

var tickRecorder = func() {}

// RegisterTickRecorder allows external packages to observe accrual ticks.
func RegisterTickRecorder(recorder func()) {
	if recorder == nil {
		tickRecorder = func() {}
		return
	}

	tickRecorder = recorder
}
