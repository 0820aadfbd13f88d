package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bankapp/pkg/configpkg"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	server := gin.New()
	server.Use(RequestLogger(logger))

	server.GET("/ok", func(gctx *gin.Context) {
		zerolog.Ctx(gctx.Request.Context()).Info().Msg("handled")
		gctx.Status(http.StatusNoContent)
	})
	server.GET("/panic", func(gctx *gin.Context) {
		panic("boom")
	})

	t.Run("GeneratesRequestID", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/ok", nil)

		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusNoContent, recorder.Code)

		requestID := recorder.Header().Get(RequestIDHeader)
		require.NotEmpty(t, requestID)

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		for _, line := range lines {
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			require.Equal(t, requestID, entry["request_id"])
		}
	})

	t.Run("KeepsClientRequestID", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/ok", nil)
		request.Header.Set(RequestIDHeader, "client-id")

		server.ServeHTTP(recorder, request)

		require.Equal(t, "client-id", recorder.Header().Get(RequestIDHeader))
		require.Contains(t, buf.String(), `"request_id":"client-id"`)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		buf.Reset()

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/panic", nil)

		server.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		require.Contains(t, buf.String(), "panic message: boom")
		require.Contains(t, buf.String(), `"level":"error"`)
	})
}

func TestCreateLogger(t *testing.T) {
	l := CreateLogger(configpkg.Config{})
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l = CreateLogger(configpkg.Config{Environment: "development"})
	require.Equal(t, zerolog.TraceLevel, l.GetLevel())
}
