// Package middleware provides gin middlewares shared by all routes.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/errorspkg"
	"github.com/go-petr/bankapp/pkg/tokenpkg"
	"github.com/go-petr/bankapp/pkg/web"
)

// Authorization header and context keys.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

// Errors returned to clients with status 401.
var (
	ErrAuthHeaderNotFound  = errors.New("authorization header is not provided")
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
	ErrRevokedToken        = errors.New("token has been revoked")
)

// RevokedChecker reports whether the token was logged out.
type RevokedChecker interface {
	IsRevoked(ctx context.Context, id uuid.UUID) (bool, error)
}

// AddAuthorization creates a token for username and sets it to the request authorization header.
func AddAuthorization(r *http.Request, tokenMaker tokenpkg.Maker, authType, username string, duration time.Duration) error {
	token, _, err := tokenMaker.CreateToken(username, domain.RoleUser, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware aborts requests without a valid, unrevoked bearer token.
//
// The verified *tokenpkg.Payload is stored under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker, revoked RevokedChecker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		authType := strings.ToLower(fields[0])
		if authType != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		isRevoked, err := revoked.IsRevoked(gctx.Request.Context(), payload.ID)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
			return
		}

		if isRevoked {
			l.Info().Str("token_id", payload.ID.String()).Msg(ErrRevokedToken.Error())
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrRevokedToken))

			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
