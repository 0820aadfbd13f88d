// Package integrationtest provides server and db helpers used in integration tests.
package integrationtest

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/cmd/httpserver"
	"github.com/go-petr/bankapp/db"
	"github.com/go-petr/bankapp/internal/middleware"
	"github.com/go-petr/bankapp/pkg/configpkg"
	"github.com/go-petr/bankapp/pkg/dbpkg"
	"github.com/go-petr/bankapp/pkg/randompkg"
	"github.com/go-petr/bankapp/pkg/web"
)

// TestConfig returns configuration of a server backed by the in-memory store.
func TestConfig() configpkg.Config {
	return configpkg.Config{
		DBDriver:            configpkg.DriverMemory,
		TokenType:           "paseto",
		TokenSymmetricKey:   randompkg.String(32),
		AccessTokenDuration: time.Minute,
		BcryptCost:          4,
	}
}

// SetupServer returns test server backed by a fresh in-memory store.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	return newServer(t, nil, TestConfig())
}

// SetupPostgresServer returns test server backed by the database from configs.
//
// The schema is migrated up front and all tables are flushed after the test.
func SetupPostgresServer(t *testing.T, configPath string) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load(configPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, configPath, err)
	}

	config.BcryptCost = 4

	conn := SetupDB(t, config.DBDriver, config.DBSource)

	return newServer(t, conn, config)
}

func newServer(t *testing.T, conn *sql.DB, config configpkg.Config) *httpserver.Server {
	t.Helper()

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(conn, nil, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(conn, nil, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, conn *sql.DB) {
	t.Helper()

	const query = `TRUNCATE TABLE entries, accounts RESTART IDENTITY CASCADE`

	if _, err := conn.Exec(query); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up migrated database connection for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	conn, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := dbpkg.Migrate(conn, db.Migrations, db.MigrationDir); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, conn)

		if err := conn.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return conn
}

// Do sends a JSON request to h and returns the recorded response.
//
// An empty token sends the request without authorization.
func Do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.AuthTypeBearer+" "+token)
	}

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)

	return recorder
}

// Decode decodes the response body into web.Response with data decoded into data.
func Decode(t *testing.T, recorder *httptest.ResponseRecorder, data any) web.Response {
	t.Helper()

	res := web.Response{Data: data}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return res
}

// Register registers a new account and returns its access token.
func Register(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	recorder := Do(t, h, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", username, recorder.Code, recorder.Body.String())
	}

	res := Decode(t, recorder, nil)
	if res.AccessToken == "" {
		t.Fatalf("register %s: empty access token", username)
	}

	return res.AccessToken
}
