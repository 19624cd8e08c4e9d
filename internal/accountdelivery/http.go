// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
// Balances cross this boundary as decimal strings so that the data layer
// service and the business layer proxy can both implement it.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, username, balance string) (domain.Account, error)
	Get(ctx context.Context, accountNumber int64) (domain.Account, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Account, error)
	Delete(ctx context.Context, accountNumber int64) error
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

func fail(gctx *gin.Context, err error) {
	gctx.JSON(web.StatusCode(err), web.Error(web.PublicError(err)))
}

type createRequest struct {
	HolderUsername string      `json:"holder_username" binding:"required"`
	Balance        json.Number `json:"balance" binding:"required,decimal"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	createdAccount, err := h.service.Create(ctx, req.HolderUsername, req.Balance.String())
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{createdAccount}})
}

type accountURI struct {
	AccountNumber int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req accountURI
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	acc, err := h.service.Get(ctx, req.AccountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		fail(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type listRequest struct {
	Username string `form:"username" binding:"required"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts of a holder.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	accounts, err := h.service.ListByUsername(ctx, req.Username)
	if err != nil {
		fail(gctx, err)
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type dataDeleted struct {
	AccountNumber int64 `json:"account_number"`
}

type responseDeleted struct {
	Data dataDeleted `json:"data,omitempty"`
}

// Delete handles http request to close account.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req accountURI
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	if err := h.service.Delete(ctx, req.AccountNumber); err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseDeleted{Data: dataDeleted{req.AccountNumber}})
}

// Register mounts the account routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/accounts", h.Create)
	r.GET("/accounts", h.List)
	r.GET("/accounts/:id", h.Get)
	r.POST("/accounts/:id/delete", h.Delete)
}
