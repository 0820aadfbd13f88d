// Package authdelivery manages delivery layer of registration and sessions.
package authdelivery

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

// AccountService provides account registration needed by auth delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package authdelivery
type AccountService interface {
	Register(ctx context.Context, username, password string) (domain.Account, error)
}

// AuthService provides token management needed by auth delivery layer.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *tokenpkg.Payload, error)
	IssueToken(ctx context.Context, username string) (string, *tokenpkg.Payload, error)
	Logout(ctx context.Context, payload *tokenpkg.Payload) error
}

// Handler facilitates auth delivery layer logic.
type Handler struct {
	accounts AccountService
	auth     AuthService
}

// NewHandler returns auth handler.
func NewHandler(as AccountService, auth AuthService) *Handler {
	return &Handler{
		accounts: as,
		auth:     auth,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,min=6"`
}

type accountData struct {
	Account domain.Account `json:"account"`
}

func bindCredentials(gctx *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return req, false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return req, false
	}

	return req, true
}

// Register handles http request to create an account and returns an access token for it.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	req, ok := bindCredentials(gctx)
	if !ok {
		return
	}

	account, err := h.accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameAlreadyExists) {
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	token, payload, err := h.auth.IssueToken(ctx, account.Username)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          token,
		AccessTokenExpiresAt: &payload.ExpiredAt,
		Data:                 accountData{Account: account},
	})
}

type loginData struct {
	Username string `json:"username"`
}

// Login handles http login request and returns an access token.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	req, ok := bindCredentials(gctx)
	if !ok {
		return
	}

	token, payload, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrWrongCredentials) {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          token,
		AccessTokenExpiresAt: &payload.ExpiredAt,
		Data:                 loginData{Username: payload.Username},
	})
}

// Logout revokes the access token of the request.
func (h *Handler) Logout(gctx *gin.Context) {
	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	if err := h.auth.Logout(gctx.Request.Context(), authPayload); err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.Status(http.StatusNoContent)
}
