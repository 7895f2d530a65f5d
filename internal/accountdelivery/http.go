// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/moneypkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultEntriesDays is the entries window used when the request names none.
const DefaultEntriesDays = 7

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	GetByOwner(ctx context.Context, ownerID string) (domain.Account, error)
	TopUp(ctx context.Context, ownerID string, amount decimal.Decimal) (domain.Account, domain.Entry, error)
	Withdraw(ctx context.Context, ownerID string, amount decimal.Decimal) (domain.Account, domain.Entry, error)
	CashFlow(ctx context.Context, ownerID string, since time.Time) (domain.Journal, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
	now     func() time.Time
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as, now: time.Now}
}

type ownerRequest struct {
	Owner string `uri:"owner" binding:"required"`
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

func errorStatus(err error) int {
	switch err {
	case domain.ErrAccountNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidAmount, domain.ErrInsufficientFunds:
		return http.StatusBadRequest
	case errorspkg.ErrCanceled:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func writeError(gctx *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

// Get handles http request to get the account of an owner.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req ownerRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	acc, err := h.service.GetByOwner(ctx, req.Owner)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type moveRequest struct {
	Amount string `json:"amount" binding:"required,money"`
}

type dataMove struct {
	Account domain.Account `json:"account"`
	Entry   domain.Entry   `json:"entry"`
}

type responseMove struct {
	Data dataMove `json:"data,omitempty"`
}

// TopUp handles http request to deposit money into an account.
func (h *Handler) TopUp(gctx *gin.Context) {
	h.move(gctx, h.service.TopUp)
}

// Withdraw handles http request to take money out of an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.move(gctx, h.service.Withdraw)
}

func (h *Handler) move(gctx *gin.Context, apply func(context.Context, string, decimal.Decimal) (domain.Account, domain.Entry, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri ownerRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req moveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	amount, err := moneypkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	acc, entry, err := apply(ctx, uri.Owner, amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseMove{Data: dataMove{Account: acc, Entry: entry}})
}

type entriesRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=3650"`
}

type dataEntries struct {
	Entries domain.Journal `json:"entries"`
}

type responseEntries struct {
	Data dataEntries `json:"data,omitempty"`
}

// Entries handles http request to list the owner's entries of the last days.
func (h *Handler) Entries(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri ownerRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req entriesRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	if req.Days == 0 {
		req.Days = DefaultEntriesDays
	}

	since := h.now().AddDate(0, 0, -req.Days)

	entries, err := h.service.CashFlow(ctx, uri.Owner, since)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseEntries{Data: dataEntries{entries}})
}
