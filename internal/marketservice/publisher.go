package marketservice

import (
	"context"

	"github.com/go-petr/market-ledger/internal/domain"
)

// Publisher announces transaction changes.
//
//go:generate mockgen -source publisher.go -destination publisher_mock.go -package marketservice
type Publisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent) error
}
