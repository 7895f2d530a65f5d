// Package marketdelivery manages delivery layer of items, purchases and their fulfilment.
package marketdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/moneypkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by market delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package marketdelivery
type Service interface {
	RegisterItem(ctx context.Context, sellerID, name string, price decimal.Decimal, stock int32) (domain.Item, error)
	Replenish(ctx context.Context, sellerID, itemID string, qty int32) (domain.Item, error)
	Discard(ctx context.Context, sellerID, itemID string, qty int32) (domain.Item, error)
	ListItems(ctx context.Context, sellerID string) ([]domain.Item, error)
	Purchase(ctx context.Context, buyerID, itemID string, qty int32) (domain.MarketTransaction, error)
	Complete(ctx context.Context, txID string) (domain.MarketTransaction, error)
	Cancel(ctx context.Context, txID string) (domain.MarketTransaction, error)
}

// Handler facilitates market delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns market handler.
func NewHandler(ms Service) *Handler {
	return &Handler{service: ms}
}

func writeError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	switch err {
	case domain.ErrUserNotFound, domain.ErrItemNotFound, domain.ErrTransactionNotFound, domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrNotSeller, domain.ErrNotBuyer:
		gctx.JSON(http.StatusForbidden, web.Error(err))
	case domain.ErrInvalidAmount, domain.ErrInvalidQuantity, domain.ErrInsufficientStock,
		domain.ErrInsufficientFunds, domain.ErrSameAccount:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrInvalidStatusTransition:
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type idRequest struct {
	ID string `uri:"id" binding:"required"`
}

type dataItem struct {
	Item domain.Item `json:"item"`
}

type responseItem struct {
	Data dataItem `json:"data,omitempty"`
}

type createItemRequest struct {
	SellerID string `json:"seller_id" binding:"required"`
	Name     string `json:"name" binding:"required,max=128"`
	Price    string `json:"price" binding:"required,money"`
	Stock    int32  `json:"stock" binding:"min=0"`
}

// CreateItem handles http request to put an item on sale.
func (h *Handler) CreateItem(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createItemRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	price, err := moneypkg.Parse(req.Price)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	item, err := h.service.RegisterItem(ctx, req.SellerID, req.Name, price, req.Stock)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, responseItem{Data: dataItem{item}})
}

type stockRequest struct {
	SellerID string `json:"seller_id" binding:"required"`
	Quantity int32  `json:"quantity" binding:"required,min=1"`
}

// Replenish handles http request to add units to an item.
func (h *Handler) Replenish(gctx *gin.Context) {
	h.stock(gctx, h.service.Replenish)
}

// Discard handles http request to remove units from an item.
func (h *Handler) Discard(gctx *gin.Context) {
	h.stock(gctx, h.service.Discard)
}

func (h *Handler) stock(gctx *gin.Context, apply func(context.Context, string, string, int32) (domain.Item, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req stockRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	item, err := apply(ctx, req.SellerID, uri.ID, req.Quantity)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseItem{Data: dataItem{item}})
}

type dataItems struct {
	Items []domain.Item `json:"items"`
}

type responseItems struct {
	Data dataItems `json:"data,omitempty"`
}

// ListItems handles http request to list the items of a seller.
func (h *Handler) ListItems(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	items, err := h.service.ListItems(ctx, uri.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseItems{Data: dataItems{items}})
}

type dataTransaction struct {
	Transaction domain.MarketTransaction `json:"transaction"`
}

type responseTransaction struct {
	Data dataTransaction `json:"data,omitempty"`
}

type purchaseRequest struct {
	BuyerID  string `json:"buyer_id" binding:"required"`
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int32  `json:"quantity" binding:"required,min=1"`
}

// Purchase handles http request to buy units of an item.
func (h *Handler) Purchase(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req purchaseRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	tx, err := h.service.Purchase(ctx, req.BuyerID, req.ItemID, req.Quantity)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, responseTransaction{Data: dataTransaction{tx}})
}

// Complete handles http request to mark a transaction as fulfilled.
func (h *Handler) Complete(gctx *gin.Context) {
	h.transition(gctx, h.service.Complete)
}

// Cancel handles http request to cancel a paid transaction.
func (h *Handler) Cancel(gctx *gin.Context) {
	h.transition(gctx, h.service.Cancel)
}

func (h *Handler) transition(gctx *gin.Context, apply func(context.Context, string) (domain.MarketTransaction, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	tx, err := apply(ctx, uri.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransaction{Data: dataTransaction{tx}})
}
