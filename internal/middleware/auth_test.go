package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/go-petr/bankapp/internal/revokerepo"
	"github.com/go-petr/bankapp/pkg/errorspkg"
	"github.com/go-petr/bankapp/pkg/randompkg"
	"github.com/go-petr/bankapp/pkg/tokenpkg"
	"github.com/go-petr/bankapp/pkg/web"
)

type failingChecker struct{}

func (failingChecker) IsRevoked(context.Context, uuid.UUID) (bool, error) {
	return false, errorspkg.ErrInternal
}

func TestAuthMiddleware(t *testing.T) {
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	revokedToken, revokedPayload, err := tokenMaker.CreateToken("user", "USER", time.Minute)
	if err != nil {
		t.Fatalf("tokenMaker.CreateToken returned error: %v", err)
	}

	revoked := revokerepo.NewRepoMemory()
	if err := revoked.Revoke(context.Background(), revokedPayload.ID, revokedPayload.ExpiredAt); err != nil {
		t.Fatalf("revoked.Revoke returned error: %v", err)
	}

	testCases := []struct {
		name           string
		checker        RevokedChecker
		setupAuth      func(t *testing.T, r *http.Request) error
		wantStatusCode int
		wantError      string
	}{
		{
			name: "NoAuthorization",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "InvalidAuthorizationHeader",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return AddAuthorization(r, tokenMaker, "", "user", time.Minute)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      ErrBadAuthHeaderFormat.Error(),
		},
		{
			name: "UnsupportedAuthorization",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return AddAuthorization(r, tokenMaker, "unsupported", "user", time.Minute)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      ErrUnsupportedAuthType.Error(),
		},
		{
			name: "InvalidToken",
			setupAuth: func(t *testing.T, r *http.Request) error {
				r.Header.Set(AuthHeaderKey, "Bearer garbage")
				return nil
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      tokenpkg.ErrInvalidToken.Error(),
		},
		{
			name: "ExpiredToken",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return AddAuthorization(r, tokenMaker, AuthTypeBearer, "user", -time.Minute)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      tokenpkg.ErrExpiredToken.Error(),
		},
		{
			name: "RevokedToken",
			setupAuth: func(t *testing.T, r *http.Request) error {
				r.Header.Set(AuthHeaderKey, "Bearer "+revokedToken)
				return nil
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      ErrRevokedToken.Error(),
		},
		{
			name:    "RevokeStoreErr",
			checker: failingChecker{},
			setupAuth: func(t *testing.T, r *http.Request) error {
				return AddAuthorization(r, tokenMaker, AuthTypeBearer, "user", time.Minute)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
		{
			name: "OK",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return AddAuthorization(r, tokenMaker, AuthTypeBearer, "user", time.Minute)
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			checker := tc.checker
			if checker == nil {
				checker = revoked
			}

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()

			authPath := "/auth"
			handler := func(gctx *gin.Context) {
				payload := gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)
				gctx.JSON(http.StatusOK, web.Response{Data: payload.Username})
			}
			server.GET(authPath, AuthMiddleware(tokenMaker, checker), handler)

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodGet, authPath, nil)
			if err != nil {
				t.Fatalf("http.NewRequest returned error: %v", err)
			}

			if err = tc.setupAuth(t, request); err != nil {
				t.Fatalf("tc.setupAuth(t, %v) returned error: %v", request, err)
			}

			server.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("recorder.Code = %v, tc.wantStatusCode = %v, want equal",
					recorder.Code, tc.wantStatusCode)
			}

			got := web.Response{}
			if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if got.Error != tc.wantError {
				t.Errorf("got.Error = %v, tc.wantError = %v, want equal", got.Error, tc.wantError)
			}

			if tc.wantStatusCode == http.StatusOK && got.Data != "user" {
				t.Errorf("got.Data = %v, want user", got.Data)
			}
		})
	}
}
