// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"errors"

	"github.com/go-petr/market-ledger/internal/accountrepo"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoMem facilitates transfer repository layer logic.
type RepoMem struct {
	accounts *accountrepo.RepoMem
}

// NewRepoMem returns transfer RepoMem operating on the given accounts.
func NewRepoMem(accounts *accountrepo.RepoMem) *RepoMem {
	return &RepoMem{accounts: accounts}
}

// Transfer moves money between two accounts.
//
// Both accounts stay locked while the buyer is debited and the seller credited,
// so either both entries are appended or none.
func (r *RepoMem) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if arg.FromAccountID == arg.ToAccountID {
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	result := domain.TransferResult{TransactionID: arg.TransactionID}

	err := r.accounts.Tx(ctx, []string{arg.FromAccountID, arg.ToAccountID}, func(h map[string]*accountrepo.Handle) error {
		from, to := h[arg.FromAccountID], h[arg.ToAccountID]

		var err error

		result.FromEntry, err = from.Debit(arg.Amount, domain.KindPurchase, arg.TransactionID)
		if err != nil {
			return err
		}

		// Credit cannot fail once the amount passed the debit checks.
		result.ToEntry, err = to.Credit(arg.Amount, domain.KindPurchase, arg.TransactionID)
		if err != nil {
			return err
		}

		result.FromAccount = from.Account()
		result.ToAccount = to.Account()

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds),
			errors.Is(err, domain.ErrInvalidAmount),
			errors.Is(err, domain.ErrAccountNotFound),
			errors.Is(err, errorspkg.ErrCanceled):
			l.Info().Err(err).Str("transaction_id", arg.TransactionID).Msg("transfer rejected")
			return domain.TransferResult{}, err
		}

		l.Error().Err(err).Msgf("Transfer(ctx context.Context, %+v)", arg)

		return domain.TransferResult{}, errorspkg.ErrInternal
	}

	return result, nil
}
