// Package account implements registration, login and wallet connection
// on top of the session store and the chain service.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
)

// RegistrationInput carries the registration form fields. Terms and
// health-data consent must both be accepted.
type RegistrationInput struct {
	Email       string             `json:"email" validate:"required,email"`
	Username    string             `json:"username" validate:"required,min=3,max=32"`
	FullName    string             `json:"full_name" validate:"required,max=128"`
	DateOfBirth string             `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	HeightCm    int                `json:"height_cm" validate:"required,gte=50,lte=260"`
	WeightKg    int                `json:"weight_kg" validate:"required,gte=20,lte=400"`
	FitnessGoal domain.FitnessGoal `json:"fitness_goal" validate:"required,oneof=weight-loss muscle-gain endurance general-health"`
	AgreeTerms  bool               `json:"agree_terms" validate:"required"`
	AgreeHealth bool               `json:"agree_health" validate:"required"`
}

// Service provides the account operations the screens invoke.
type Service struct {
	store    *session.Store
	storage  session.Storage
	chain    chain.Service
	log      *slog.Logger
	validate *validator.Validate
}

// NewService constructs an account Service.
func NewService(store *session.Store, storage session.Storage, chainSvc chain.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:    store,
		storage:  storage,
		chain:    chainSvc,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register validates the input, creates the identity through the chain
// service and opens a fresh session with a zero ledger. Validation
// failures make no remote call and mutate nothing.
func (s *Service) Register(ctx context.Context, input RegistrationInput) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.NewValidationError(validationMessage(err))
	}

	var user *domain.User
	err := apperr.WithRetry(ctx, func() error {
		registered, regErr := s.chain.RegisterUser(ctx, chain.Profile{
			Email:       input.Email,
			Username:    input.Username,
			FullName:    input.FullName,
			DateOfBirth: input.DateOfBirth,
			HeightCm:    input.HeightCm,
			WeightKg:    input.WeightKg,
			FitnessGoal: input.FitnessGoal,
		})
		if regErr != nil {
			return apperr.NewRemoteOperationFailed("register_user", regErr)
		}

		user = registered
		return nil
	})
	if err != nil {
		s.log.Error("registration failed", slog.String("username", input.Username), slog.Any("error", err))
		return nil, err
	}

	if err := s.store.Login(ctx, user, domain.Coin{}, nil); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s.log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("wallet", user.ShortAddress()),
	)

	return user, nil
}

// Login opens a session from the persisted identity. Fails with a
// NotRegistered error when no snapshot exists on the device.
func (s *Service) Login(ctx context.Context) (*domain.User, error) {
	snap, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSnapshotNotFound) {
			return nil, apperr.NewNotRegistered()
		}

		return nil, fmt.Errorf("load persisted session: %w", err)
	}

	if err := s.store.Login(ctx, snap.User, snap.Coins, snap.Activities); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return snap.User, nil
}

// ConnectWallet opens a session for the persisted identity bound to the
// given wallet address. An unknown address prompts registration.
func (s *Service) ConnectWallet(ctx context.Context, address string) (*domain.User, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.NewValidationError("wallet address is required")
	}

	snap, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSnapshotNotFound) {
			return nil, apperr.NewNotRegistered()
		}

		return nil, fmt.Errorf("load persisted session: %w", err)
	}

	if !strings.EqualFold(snap.User.WalletAddress, address) {
		s.log.Warn("wallet address does not match persisted identity",
			slog.String("wallet", address),
		)
		return nil, apperr.NewNotRegistered()
	}

	if err := s.store.Login(ctx, snap.User, snap.Coins, snap.Activities); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return snap.User, nil
}

// Logout closes the session and clears the persisted snapshot.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Logout(ctx)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
	}

	return strings.Join(fields, "; ")
}
