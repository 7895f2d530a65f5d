// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/idpkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, ownerID string) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	GetByOwner(ctx context.Context, ownerID string) (domain.Account, error)
	Credit(ctx context.Context, id string, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Account, domain.Entry, error)
	Debit(ctx context.Context, id string, amount decimal.Decimal, kind domain.EntryKind, txID string) (domain.Account, domain.Entry, error)
	EntriesSince(ctx context.Context, id string, threshold time.Time) (domain.Journal, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo  Repo
	newID func() string
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar, newID: idpkg.New}
}

// Create creates and returns the account of the given owner.
// An owner that already has an account gets it back.
func (s *Service) Create(ctx context.Context, ownerID string) (domain.Account, error) {
	return s.repo.Create(ctx, ownerID)
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByOwner returns the account of the given owner.
func (s *Service) GetByOwner(ctx context.Context, ownerID string) (domain.Account, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// TopUp deposits amount into the owner's account.
func (s *Service) TopUp(ctx context.Context, ownerID string, amount decimal.Decimal) (domain.Account, domain.Entry, error) {
	return s.move(ctx, ownerID, amount, domain.KindTopUp)
}

// Withdraw takes amount out of the owner's account.
func (s *Service) Withdraw(ctx context.Context, ownerID string, amount decimal.Decimal) (domain.Account, domain.Entry, error) {
	return s.move(ctx, ownerID, amount, domain.KindWithdrawal)
}

func (s *Service) move(ctx context.Context, ownerID string, amount decimal.Decimal, kind domain.EntryKind) (domain.Account, domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		l.Info().Str("amount", amount.String()).Msg("non positive amount")
		return domain.Account{}, domain.Entry{}, domain.ErrInvalidAmount
	}

	acc, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return domain.Account{}, domain.Entry{}, err
	}

	credit := s.repo.Credit
	if kind == domain.KindWithdrawal {
		credit = s.repo.Debit
	}

	updated, entry, err := credit(ctx, acc.ID, amount, kind, s.newID())
	if err != nil {
		l.Info().Err(err).Str("account_id", acc.ID).Str("kind", string(kind)).Send()
		return domain.Account{}, domain.Entry{}, err
	}

	return updated, entry, nil
}

// CashFlow returns the owner's entries recorded at or after since.
func (s *Service) CashFlow(ctx context.Context, ownerID string, since time.Time) (domain.Journal, error) {
	acc, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.repo.EntriesSince(ctx, acc.ID, since)
}
