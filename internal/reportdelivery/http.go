// Package reportdelivery exposes the analytics queries over http.
package reportdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Defaults used when a query parameter is omitted.
const (
	DefaultActivityDays = 7
	DefaultSpendingDays = 30
	DefaultTopN         = 10
)

// Engine provides the analytics queries needed by report delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package reportdelivery
type Engine interface {
	BankActivity(ctx context.Context, now time.Time, window time.Duration) ([]domain.AccountEntry, error)
	CashFlow(ctx context.Context, ownerID string, now time.Time, window time.Duration) (domain.Journal, error)
	CashFlowToday(ctx context.Context, ownerID string, now time.Time) (domain.Journal, error)
	Customers(ctx context.Context) ([]domain.Customer, error)
	DormantAccounts(ctx context.Context, now time.Time) ([]domain.Account, error)
	TopUsersToday(ctx context.Context, now time.Time, n int) ([]domain.RankedID, error)
	TransactionsSince(ctx context.Context, now time.Time, days int) ([]domain.MarketTransaction, error)
	PaidUncompleted(ctx context.Context) ([]domain.MarketTransaction, error)
	TopItems(ctx context.Context, m int) ([]domain.RankedID, error)
	TopBuyers(ctx context.Context, m int) ([]domain.RankedID, error)
	TopSellers(ctx context.Context, m int) ([]domain.RankedID, error)
	Spending(ctx context.Context, buyerID string, now time.Time, days int) (decimal.Decimal, error)
	Orders(ctx context.Context, userID string, status domain.TransactionStatus) ([]string, error)
	PopularItems(ctx context.Context, sellerID string, now time.Time, k int) ([]domain.RankedID, error)
	LoyalCustomer(ctx context.Context, sellerID string, now time.Time) (domain.LoyalCustomer, bool, error)
}

// Handler facilitates report delivery layer logic.
type Handler struct {
	engine Engine
	now    func() time.Time
}

// NewHandler returns report handler.
func NewHandler(e Engine) *Handler {
	return &Handler{engine: e, now: time.Now}
}

type idRequest struct {
	ID string `uri:"id" binding:"required"`
}

type daysRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=3650"`
}

type topRequest struct {
	N int `form:"n" binding:"omitempty,min=1,max=1000"`
}

type ordersRequest struct {
	Status string `form:"status" binding:"required,status"`
}

func reply(gctx *gin.Context, data any, err error) {
	if err == nil {
		gctx.JSON(http.StatusOK, web.Response{Data: data})
		return
	}

	switch err {
	case domain.ErrUserNotFound, domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrInvalidStatus:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errorspkg.ErrCanceled:
		gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
	default:
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// bind binds the uri and query of the request into the given targets, answering 400 on failure.
func bind(gctx *gin.Context, uri, query any) bool {
	if uri != nil {
		if err := gctx.ShouldBindUri(uri); err != nil {
			zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.BindError(err))

			return false
		}
	}

	if query != nil {
		if err := gctx.ShouldBindQuery(query); err != nil {
			zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.BindError(err))

			return false
		}
	}

	return true
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}

	return v
}

// BankActivity handles http request to list top ups and withdrawals of the last days.
func (h *Handler) BankActivity(gctx *gin.Context) {
	var q daysRequest
	if !bind(gctx, nil, &q) {
		return
	}

	window := time.Duration(orDefault(q.Days, DefaultActivityDays)) * 24 * time.Hour

	entries, err := h.engine.BankActivity(gctx.Request.Context(), h.now(), window)
	reply(gctx, gin.H{"entries": entries}, err)
}

// CashFlow handles http request to list an owner's entries.
// Without days only today's entries are returned.
func (h *Handler) CashFlow(gctx *gin.Context) {
	var (
		uri idRequest
		q   daysRequest
	)

	if !bind(gctx, &uri, &q) {
		return
	}

	var (
		ctx     = gctx.Request.Context()
		entries domain.Journal
		err     error
	)

	if q.Days == 0 {
		entries, err = h.engine.CashFlowToday(ctx, uri.ID, h.now())
	} else {
		entries, err = h.engine.CashFlow(ctx, uri.ID, h.now(), time.Duration(q.Days)*24*time.Hour)
	}

	reply(gctx, gin.H{"entries": entries}, err)
}

// Customers handles http request to list owners with their accounts.
func (h *Handler) Customers(gctx *gin.Context) {
	customers, err := h.engine.Customers(gctx.Request.Context())
	reply(gctx, gin.H{"customers": customers}, err)
}

// DormantAccounts handles http request to list accounts without recent activity.
func (h *Handler) DormantAccounts(gctx *gin.Context) {
	accounts, err := h.engine.DormantAccounts(gctx.Request.Context(), h.now())
	reply(gctx, gin.H{"accounts": accounts}, err)
}

// TopUsersToday handles http request to rank owners by today's entry count.
func (h *Handler) TopUsersToday(gctx *gin.Context) {
	var q topRequest
	if !bind(gctx, nil, &q) {
		return
	}

	ranking, err := h.engine.TopUsersToday(gctx.Request.Context(), h.now(), orDefault(q.N, DefaultTopN))
	reply(gctx, gin.H{"ranking": ranking}, err)
}

// Transactions handles http request to list transactions of the last days.
func (h *Handler) Transactions(gctx *gin.Context) {
	var q daysRequest
	if !bind(gctx, nil, &q) {
		return
	}

	txs, err := h.engine.TransactionsSince(gctx.Request.Context(), h.now(), orDefault(q.Days, DefaultActivityDays))
	reply(gctx, gin.H{"transactions": txs}, err)
}

// PaidUncompleted handles http request to list transactions waiting for fulfilment.
func (h *Handler) PaidUncompleted(gctx *gin.Context) {
	txs, err := h.engine.PaidUncompleted(gctx.Request.Context())
	reply(gctx, gin.H{"transactions": txs}, err)
}

// TopItems handles http request to rank items by number of sales.
func (h *Handler) TopItems(gctx *gin.Context) {
	h.top(gctx, h.engine.TopItems)
}

// TopBuyers handles http request to rank buyers by number of purchases.
func (h *Handler) TopBuyers(gctx *gin.Context) {
	h.top(gctx, h.engine.TopBuyers)
}

// TopSellers handles http request to rank sellers by number of sales.
func (h *Handler) TopSellers(gctx *gin.Context) {
	h.top(gctx, h.engine.TopSellers)
}

func (h *Handler) top(gctx *gin.Context, query func(context.Context, int) ([]domain.RankedID, error)) {
	var q topRequest
	if !bind(gctx, nil, &q) {
		return
	}

	ranking, err := query(gctx.Request.Context(), orDefault(q.N, DefaultTopN))
	reply(gctx, gin.H{"ranking": ranking}, err)
}

// Spending handles http request to sum a buyer's recent spending.
func (h *Handler) Spending(gctx *gin.Context) {
	var (
		uri idRequest
		q   daysRequest
	)

	if !bind(gctx, &uri, &q) {
		return
	}

	total, err := h.engine.Spending(gctx.Request.Context(), uri.ID, h.now(), orDefault(q.Days, DefaultSpendingDays))
	reply(gctx, gin.H{"buyer_id": uri.ID, "total": total}, err)
}

// Orders handles http request to list a user's orders with the given status.
func (h *Handler) Orders(gctx *gin.Context) {
	var (
		uri idRequest
		q   ordersRequest
	)

	if !bind(gctx, &uri, &q) {
		return
	}

	status, err := domain.ParseStatus(q.Status)
	if err != nil {
		reply(gctx, nil, err)
		return
	}

	ids, err := h.engine.Orders(gctx.Request.Context(), uri.ID, status)
	reply(gctx, gin.H{"order_ids": ids}, err)
}

// PopularItems handles http request to rank a seller's items by recent units sold.
func (h *Handler) PopularItems(gctx *gin.Context) {
	var (
		uri idRequest
		q   topRequest
	)

	if !bind(gctx, &uri, &q) {
		return
	}

	ranking, err := h.engine.PopularItems(gctx.Request.Context(), uri.ID, h.now(), orDefault(q.N, DefaultTopN))
	reply(gctx, gin.H{"ranking": ranking}, err)
}

// LoyalCustomer handles http request to find the buyer who spent most with a seller recently.
func (h *Handler) LoyalCustomer(gctx *gin.Context) {
	var uri idRequest
	if !bind(gctx, &uri, nil) {
		return
	}

	customer, found, err := h.engine.LoyalCustomer(gctx.Request.Context(), uri.ID, h.now())
	if !found {
		reply(gctx, gin.H{"found": false}, err)
		return
	}

	reply(gctx, gin.H{"found": true, "customer": customer}, err)
}
