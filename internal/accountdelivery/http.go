// Package accountdelivery manages delivery layer of the authenticated account.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/internal/middleware"
	"github.com/go-petr/bankapp/pkg/errorspkg"
	"github.com/go-petr/bankapp/pkg/tokenpkg"
	"github.com/go-petr/bankapp/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, username string) (domain.Account, error)
	Deposit(ctx context.Context, username, amount string) (domain.EntryResult, error)
	Withdraw(ctx context.Context, username, amount string) (domain.EntryResult, error)
	History(ctx context.Context, username string) ([]domain.Entry, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type entriesData struct {
	Entries []domain.Entry `json:"entries"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

func username(gctx *gin.Context) string {
	return gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload).Username
}

// writeError renders err with the status matching its kind.
func writeError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNonPositiveAmount):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInsufficientFunds):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// Get handles http request to get the balance of the authenticated account.
func (h *Handler) Get(gctx *gin.Context) {
	account, err := h.service.Get(gctx.Request.Context(), username(gctx))
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{Account: account}})
}

// Deposit handles http request to deposit money into the authenticated account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money from the authenticated account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Withdraw)
}

func (h *Handler) changeBalance(
	gctx *gin.Context,
	op func(ctx context.Context, username, amount string) (domain.EntryResult, error),
) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	result, err := op(ctx, username(gctx), req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: result})
}

// History handles http request to list the ledger entries of the authenticated account.
func (h *Handler) History(gctx *gin.Context) {
	entries, err := h.service.History(gctx.Request.Context(), username(gctx))
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: entriesData{Entries: entries}})
}
