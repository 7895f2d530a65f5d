// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"sync"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	AddOrder(ctx context.Context, userID, txID string) error
}

// AccountRepo provides account creation needed when a user registers.
type AccountRepo interface {
	Create(ctx context.Context, ownerID string) (domain.Account, error)
	Remove(ctx context.Context, ownerID string) error
}

// Service facilitates user service layer logic.
type Service struct {
	repo        Repo
	accountRepo AccountRepo
	state       *sync.RWMutex
	newID       func() string
}

// New return user service struct to manage user bussines logic.
func New(ur Repo, ar AccountRepo) *Service {
	return &Service{
		repo:        ur,
		accountRepo: ar,
		state:       &sync.RWMutex{},
		newID:       uuid.NewString,
	}
}

// WithStateLock sets the lock Register holds shared while it writes the account and the user.
func (s *Service) WithStateLock(mu *sync.RWMutex) *Service {
	s.state = mu
	return s
}

// Register creates a user with the given role together with its bank account.
//
// The account is opened first and removed again when the user cannot be
// created, so no user is ever left without an account.
func (s *Service) Register(ctx context.Context, username string, role domain.Role) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	if !role.Valid() {
		l.Info().Str("role", string(role)).Msg("unknown role")
		return domain.User{}, domain.ErrInvalidRole
	}

	s.state.RLock()
	defer s.state.RUnlock()

	id := s.newID()

	acc, err := s.accountRepo.Create(ctx, id)
	if err != nil {
		l.Error().Err(err).Str("user_id", id).Msg("cannot create account")
		return domain.User{}, err
	}

	u, err := s.repo.Create(ctx, domain.CreateUserParams{
		ID:       id,
		Username: username,
		Role:     role,
	})
	if err != nil {
		if rerr := s.accountRepo.Remove(context.WithoutCancel(ctx), id); rerr != nil {
			l.Error().Err(rerr).Str("user_id", id).Msg("cannot remove account")
		}

		return domain.User{}, err
	}

	u.AccountID = acc.ID

	l.Debug().Str("user_id", u.ID).Str("role", string(role)).Msg("user registered")

	return u, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// AddOrder records the transaction id among the user's orders.
func (s *Service) AddOrder(ctx context.Context, userID, txID string) error {
	return s.repo.AddOrder(ctx, userID, txID)
}
