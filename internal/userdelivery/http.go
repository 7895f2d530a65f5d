// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Register(ctx context.Context, username string, role domain.Role) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns user handler.
func NewHandler(us Service) *Handler {
	return &Handler{service: us}
}

type data struct {
	User domain.User `json:"user"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=64"`
	Role     string `json:"role" binding:"required,role"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	user, err := h.service.Register(ctx, req.Username, domain.Role(req.Role))
	if err != nil {
		switch err {
		case domain.ErrUsernameAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrInvalidRole:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{user}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Get handles http request to get a user.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	user, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{user}})
}

type dataUsers struct {
	Users []domain.User `json:"users"`
}

type responseUsers struct {
	Data dataUsers `json:"data,omitempty"`
}

// List handles http request to list all users.
func (h *Handler) List(gctx *gin.Context) {
	users, err := h.service.List(gctx.Request.Context())
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseUsers{Data: dataUsers{users}})
}
