package httpserver_test

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/bankapp/internal/integrationtest"
	"github.com/go-petr/bankapp/pkg/randompkg"
)

// TestPostgresFlow runs against the database from configs/app.env.
// Set BANKAPP_POSTGRES_TEST=1 to enable it.
func TestPostgresFlow(t *testing.T) {
	if os.Getenv("BANKAPP_POSTGRES_TEST") == "" {
		t.Skip("BANKAPP_POSTGRES_TEST is not set")
	}

	server := integrationtest.SetupPostgresServer(t, "../../configs")

	recorder := integrationtest.Do(t, server, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	alice := randompkg.Username()
	bob := randompkg.Username()
	aliceToken := integrationtest.Register(t, server, alice, password)
	bobToken := integrationtest.Register(t, server, bob, password)

	recorder = integrationtest.Do(t, server, http.MethodPost, "/account/deposit", aliceToken,
		map[string]string{"amount": "100"})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = integrationtest.Do(t, server, http.MethodPost, "/account/transfer", aliceToken,
		map[string]string{"to_username": bob, "amount": "100.01"})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	recorder = integrationtest.Do(t, server, http.MethodPost, "/account/transfer", aliceToken,
		map[string]string{"to_username": randompkg.Username(), "amount": "1000"})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	recorder = integrationtest.Do(t, server, http.MethodPost, "/account/transfer", aliceToken,
		map[string]string{"to_username": randompkg.Username(), "amount": "1"})
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = integrationtest.Do(t, server, http.MethodPost, "/account/transfer", aliceToken,
		map[string]string{"to_username": bob, "amount": "25.25"})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	requireBalance(t, server, aliceToken, "74.75")
	requireBalance(t, server, bobToken, "25.25")

	recorder = integrationtest.Do(t, server, http.MethodPost, "/register", "", map[string]string{
		"username": alice,
		"password": password,
	})
	require.Equal(t, http.StatusConflict, recorder.Code)
}
