package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo ports.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(userRepo ports.UserRepository, log zerolog.Logger) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo, log: log}
}

// Create registers a new user. Email is unique across the ledger.
func (s *UserServiceImpl) Create(ctx context.Context, req ports.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperror.Validation("Email is required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("user created")

	return user, nil
}

// GetByID fetches a user or returns a not-found error.
func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}
