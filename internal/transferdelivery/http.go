// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/idpkg"
	"github.com/go-petr/market-ledger/pkg/moneypkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
	newID   func() string
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
		newID:   idpkg.New,
	}
}

type request struct {
	FromAccountID string `json:"from_account_id" binding:"required"`
	ToAccountID   string `json:"to_account_id" binding:"required"`
	Amount        string `json:"amount" binding:"required,money"`
	TransactionID string `json:"transaction_id" binding:"omitempty,max=64"`
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to move money between two accounts.
// A transaction id is minted when the request carries none.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
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

	if req.TransactionID == "" {
		req.TransactionID = h.newID()
	}

	arg := domain.TransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		TransactionID: req.TransactionID,
	}

	result, err := h.service.Transfer(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrSameAccount,
			domain.ErrInsufficientFunds:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{result}})
}
