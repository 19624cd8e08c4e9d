// Package ledgerdelivery manages delivery layer of deposits, withdrawals, transfers and history.
package ledgerdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, accountNumber int64, amount string) (domain.Transaction, error)
	Withdraw(ctx context.Context, accountNumber int64, amount string) (domain.Transaction, error)
	Transfer(ctx context.Context, from, to int64, amount string) (domain.TransferResult, error)
}

// HistoryService provides the transaction history of an account.
type HistoryService interface {
	History(ctx context.Context, accountNumber int64) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
	history HistoryService
}

// NewHandler returns ledger handler.
func NewHandler(ls Service, hs HistoryService) Handler {
	return Handler{service: ls, history: hs}
}

type transactionRequest struct {
	AccountNumber int64       `json:"account_number" binding:"required,min=1"`
	Amount        json.Number `json:"amount" binding:"required,decimal"`
}

type dataTransaction struct {
	Transaction domain.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal    `json:"new_balance"`
}

type responseTransaction struct {
	Data dataTransaction `json:"data,omitempty"`
}

func fail(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		gctx.JSON(http.StatusPaymentRequired, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	default:
		gctx.JSON(web.StatusCode(err), web.Error(web.PublicError(err)))
	}
}

func (h *Handler) mutate(gctx *gin.Context, op func(ctx context.Context, accountNumber int64, amount string) (domain.Transaction, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transactionRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	t, err := op(ctx, req.AccountNumber, req.Amount.String())
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransaction{
		Data: dataTransaction{Transaction: t, NewBalance: t.ResultingBalance},
	})
}

// Deposit handles http request to deposit money to an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.mutate(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.mutate(gctx, h.service.Withdraw)
}

type transferRequest struct {
	FromAccount int64       `json:"from_account" binding:"required,min=1"`
	ToAccount   int64       `json:"to_account" binding:"required,min=1"`
	Amount      json.Number `json:"amount" binding:"required,decimal"`
}

type dataTransfer struct {
	Transfer domain.TransferResult `json:"transfer"`
}

type responseTransfer struct {
	Data dataTransfer `json:"data,omitempty"`
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	res, err := h.service.Transfer(ctx, req.FromAccount, req.ToAccount, req.Amount.String())
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransfer{Data: dataTransfer{res}})
}

type historyRequest struct {
	AccountNumber int64 `uri:"account_number" binding:"required,min=1"`
}

type dataHistory struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseHistory struct {
	Data dataHistory `json:"data,omitempty"`
}

// History handles http request to list the transactions of an account.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req historyRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	items, err := h.history.History(ctx, req.AccountNumber)
	if err != nil {
		fail(gctx, err)
		return
	}

	if items == nil {
		items = []domain.Transaction{}
	}

	gctx.JSON(http.StatusOK, responseHistory{Data: dataHistory{items}})
}

// Register mounts the ledger routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/transactions/deposit", h.Deposit)
	r.POST("/transactions/withdraw", h.Withdraw)
	r.POST("/transactions/transfer", h.Transfer)
	r.GET("/transactions/history/:account_number", h.History)
}
