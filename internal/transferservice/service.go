// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// AccountRepo provides account lookups needed to validate a transfer.
type AccountRepo interface {
	Get(ctx context.Context, id string) (domain.Account, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo        Repo
	accountRepo AccountRepo
}

// New return transfer service struct to manage transfer bussines logic.
func New(tr Repo, ar AccountRepo) *Service {
	return &Service{
		repo:        tr,
		accountRepo: ar,
	}
}

func (s *Service) validRequest(ctx context.Context, arg domain.TransferParams) error {
	l := zerolog.Ctx(ctx)

	if !arg.Amount.IsPositive() {
		l.Info().Str("amount", arg.Amount.String()).Msg("non positive transfer amount")
		return domain.ErrInvalidAmount
	}

	if arg.FromAccountID == arg.ToAccountID {
		l.Info().Str("account_id", arg.FromAccountID).Msg("transfer to the same account")
		return domain.ErrSameAccount
	}

	fromAccount, err := s.accountRepo.Get(ctx, arg.FromAccountID)
	if err != nil {
		l.Info().Err(err).Str("account_id", arg.FromAccountID).Send()
		return err
	}

	if _, err := s.accountRepo.Get(ctx, arg.ToAccountID); err != nil {
		l.Info().Err(err).Str("account_id", arg.ToAccountID).Send()
		return err
	}

	// The repo checks the balance again under the account locks.
	if fromAccount.Balance.LessThan(arg.Amount) {
		return domain.ErrInsufficientFunds
	}

	return nil
}

// Transfer checks if transfer request is valid and then executes transfer.
func (s *Service) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	if err := s.validRequest(ctx, arg); err != nil {
		return domain.TransferResult{}, err
	}

	result, err := s.repo.Transfer(ctx, arg)
	if err != nil {
		return domain.TransferResult{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("transaction_id", result.TransactionID).
		Str("from", result.FromAccount.ID).
		Str("to", result.ToAccount.ID).
		Str("amount", arg.Amount.String()).
		Msg("transfer completed")

	return result, nil
}
