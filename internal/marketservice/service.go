// Package marketservice manages the marketplace flows: items, purchases and fulfilment.
//
// Money moves only through the transfer coordinator. The transaction catalog
// records what was bought, and the buyer keeps the transaction id among its orders.
package marketservice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/idpkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RefundSuffix is appended to a transaction id to name the transfer that refunds it.
const RefundSuffix = "-refund"

// UserRepo provides the identity lookups needed by the market.
type UserRepo interface {
	Get(ctx context.Context, id string) (domain.User, error)
	AddOrder(ctx context.Context, userID, txID string) error
}

// ItemRepo provides the inventory needed by the market.
type ItemRepo interface {
	Create(ctx context.Context, arg domain.CreateItemParams) (domain.Item, error)
	Get(ctx context.Context, id string) (domain.Item, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Item, error)
	AddStock(ctx context.Context, id string, qty int32) (domain.Item, error)
	TakeStock(ctx context.Context, id string, qty int32) (domain.Item, error)
}

// TransactionRepo provides the transaction catalog.
type TransactionRepo interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.MarketTransaction, error)
	Get(ctx context.Context, id string) (domain.MarketTransaction, error)
	SetStatus(ctx context.Context, id string, status domain.TransactionStatus) (domain.MarketTransaction, error)
	Transition(ctx context.Context, id string, next domain.TransactionStatus) (domain.MarketTransaction, error)
}

// Transferer moves money between two accounts.
type Transferer interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// Service facilitates market service layer logic.
type Service struct {
	users     UserRepo
	items     ItemRepo
	txs       TransactionRepo
	transfers Transferer
	publisher Publisher
	state     *sync.RWMutex
	newID     func() string
	now       func() time.Time
}

// New returns market service struct to manage marketplace bussines logic.
func New(ur UserRepo, ir ItemRepo, tr TransactionRepo, ts Transferer, p Publisher) *Service {
	return &Service{
		users:     ur,
		items:     ir,
		txs:       tr,
		transfers: ts,
		publisher: p,
		state:     &sync.RWMutex{},
		newID:     idpkg.New,
		now:       time.Now,
	}
}

// WithStateLock sets the lock held shared by Purchase and Cancel.
// The snapshot export holds the same lock exclusively.
func (s *Service) WithStateLock(mu *sync.RWMutex) *Service {
	s.state = mu
	return s
}

func (s *Service) seller(ctx context.Context, sellerID string) (domain.User, error) {
	u, err := s.users.Get(ctx, sellerID)
	if err != nil {
		return domain.User{}, err
	}

	if !u.Role.CanSell() {
		zerolog.Ctx(ctx).Info().Str("user_id", sellerID).Str("role", string(u.Role)).Msg("user cannot sell")
		return domain.User{}, domain.ErrNotSeller
	}

	return u, nil
}

func (s *Service) ownedItem(ctx context.Context, sellerID, itemID string) (domain.Item, error) {
	if _, err := s.seller(ctx, sellerID); err != nil {
		return domain.Item{}, err
	}

	it, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}

	if it.SellerID != sellerID {
		return domain.Item{}, domain.ErrNotSeller
	}

	return it, nil
}

// RegisterItem puts a new item on sale for the seller.
func (s *Service) RegisterItem(ctx context.Context, sellerID, name string, price decimal.Decimal, stock int32) (domain.Item, error) {
	if _, err := s.seller(ctx, sellerID); err != nil {
		return domain.Item{}, err
	}

	return s.items.Create(ctx, domain.CreateItemParams{
		SellerID: sellerID,
		Name:     name,
		Price:    price,
		Stock:    stock,
	})
}

// Replenish adds qty units to the seller's item.
func (s *Service) Replenish(ctx context.Context, sellerID, itemID string, qty int32) (domain.Item, error) {
	if _, err := s.ownedItem(ctx, sellerID, itemID); err != nil {
		return domain.Item{}, err
	}

	return s.items.AddStock(ctx, itemID, qty)
}

// Discard removes qty units from the seller's item.
func (s *Service) Discard(ctx context.Context, sellerID, itemID string, qty int32) (domain.Item, error) {
	if _, err := s.ownedItem(ctx, sellerID, itemID); err != nil {
		return domain.Item{}, err
	}

	return s.items.TakeStock(ctx, itemID, qty)
}

// ListItems returns the items of the seller.
func (s *Service) ListItems(ctx context.Context, sellerID string) ([]domain.Item, error) {
	if _, err := s.seller(ctx, sellerID); err != nil {
		return nil, err
	}

	return s.items.ListBySeller(ctx, sellerID)
}

// Purchase buys qty units of the item for the buyer.
//
// Stock is reserved first and given back when the payment fails, so a
// failed purchase leaves balances, stock and the catalog unchanged.
func (s *Service) Purchase(ctx context.Context, buyerID, itemID string, qty int32) (domain.MarketTransaction, error) {
	l := zerolog.Ctx(ctx)

	if qty <= 0 {
		return domain.MarketTransaction{}, domain.ErrInvalidQuantity
	}

	s.state.RLock()
	defer s.state.RUnlock()

	buyer, err := s.users.Get(ctx, buyerID)
	if err != nil {
		return domain.MarketTransaction{}, err
	}

	if !buyer.Role.CanBuy() {
		return domain.MarketTransaction{}, domain.ErrNotBuyer
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.MarketTransaction{}, err
	}

	seller, err := s.users.Get(ctx, item.SellerID)
	if err != nil {
		l.Error().Err(err).Str("item_id", itemID).Msg("item seller is unknown")
		return domain.MarketTransaction{}, errorspkg.ErrInternal
	}

	if _, err := s.items.TakeStock(ctx, itemID, qty); err != nil {
		return domain.MarketTransaction{}, err
	}

	amount := item.Price.Mul(decimal.NewFromInt32(qty))
	txID := s.newID()

	_, err = s.transfers.Transfer(ctx, domain.TransferParams{
		FromAccountID: buyer.AccountID,
		ToAccountID:   seller.AccountID,
		Amount:        amount,
		TransactionID: txID,
	})
	if err != nil {
		s.restock(ctx, itemID, qty)
		return domain.MarketTransaction{}, err
	}

	tx, err := s.txs.Create(ctx, domain.CreateTransactionParams{
		ID:       txID,
		ItemID:   itemID,
		BuyerID:  buyerID,
		SellerID: seller.ID,
		Amount:   amount,
		Quantity: qty,
	})
	if err != nil {
		l.Error().Err(err).Str("transaction_id", txID).Msg("cannot record transaction, refunding")
		s.refund(ctx, txID, seller.AccountID, buyer.AccountID, amount)
		s.restock(ctx, itemID, qty)

		return domain.MarketTransaction{}, errorspkg.ErrInternal
	}

	if err := s.users.AddOrder(ctx, buyerID, txID); err != nil {
		l.Error().Err(err).Str("transaction_id", txID).Msg("cannot add order to buyer, refunding")

		if _, serr := s.txs.SetStatus(ctx, txID, domain.StatusCancelled); serr != nil {
			l.Error().Err(serr).Str("transaction_id", txID).Msg("cannot cancel transaction")
		}

		s.refund(ctx, txID, seller.AccountID, buyer.AccountID, amount)
		s.restock(ctx, itemID, qty)

		return domain.MarketTransaction{}, errorspkg.ErrInternal
	}

	s.publish(ctx, domain.EventTransactionPaid, tx)

	return tx, nil
}

// Complete marks a paid transaction as fulfilled.
func (s *Service) Complete(ctx context.Context, txID string) (domain.MarketTransaction, error) {
	tx, err := s.txs.Transition(ctx, txID, domain.StatusCompleted)
	if err != nil {
		return domain.MarketTransaction{}, err
	}

	s.publish(ctx, domain.EventTransactionCompleted, tx)

	return tx, nil
}

// Cancel cancels a paid transaction, refunds the buyer and puts the units back in stock.
func (s *Service) Cancel(ctx context.Context, txID string) (domain.MarketTransaction, error) {
	l := zerolog.Ctx(ctx)

	s.state.RLock()
	defer s.state.RUnlock()

	tx, err := s.txs.Transition(ctx, txID, domain.StatusCancelled)
	if err != nil {
		return domain.MarketTransaction{}, err
	}

	_, err = s.transfers.Transfer(ctx, domain.TransferParams{
		FromAccountID: domain.AccountIDFor(tx.SellerID),
		ToAccountID:   domain.AccountIDFor(tx.BuyerID),
		Amount:        tx.Amount,
		TransactionID: txID + RefundSuffix,
	})
	if err != nil {
		l.Info().Err(err).Str("transaction_id", txID).Msg("refund failed, transaction stays paid")

		if _, rerr := s.txs.SetStatus(ctx, txID, domain.StatusPaid); rerr != nil {
			l.Error().Err(rerr).Str("transaction_id", txID).Msg("cannot revert status")
		}

		return domain.MarketTransaction{}, err
	}

	s.restock(ctx, tx.ItemID, tx.Quantity)
	s.publish(ctx, domain.EventTransactionCancelled, tx)

	return tx, nil
}

func (s *Service) restock(ctx context.Context, itemID string, qty int32) {
	if _, err := s.items.AddStock(ctx, itemID, qty); err != nil && !errors.Is(err, domain.ErrItemNotFound) {
		zerolog.Ctx(ctx).Error().Err(err).Str("item_id", itemID).Int32("quantity", qty).Msg("cannot restock item")
	}
}

func (s *Service) refund(ctx context.Context, txID, fromAccountID, toAccountID string, amount decimal.Decimal) {
	_, err := s.transfers.Transfer(ctx, domain.TransferParams{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		TransactionID: txID + RefundSuffix,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("transaction_id", txID).Msg("cannot refund buyer")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, tx domain.MarketTransaction) {
	event := domain.TransactionEvent{
		Type:        eventType,
		Transaction: tx,
		OccurredAt:  s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("transaction_id", tx.ID).Str("type", eventType).Msg("event not published")
	}
}
