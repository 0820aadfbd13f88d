// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/accountdelivery"
	"github.com/go-petr/bankapp/internal/accountrepo"
	"github.com/go-petr/bankapp/internal/accountservice"
	"github.com/go-petr/bankapp/internal/authdelivery"
	"github.com/go-petr/bankapp/internal/authservice"
	"github.com/go-petr/bankapp/internal/entryrepo"
	"github.com/go-petr/bankapp/internal/memrepo"
	"github.com/go-petr/bankapp/internal/middleware"
	"github.com/go-petr/bankapp/internal/revokerepo"
	"github.com/go-petr/bankapp/internal/transferdelivery"
	"github.com/go-petr/bankapp/internal/txrepo"
	"github.com/go-petr/bankapp/pkg/configpkg"
	"github.com/go-petr/bankapp/pkg/passpkg"
	"github.com/go-petr/bankapp/pkg/tokenpkg"
	"github.com/go-petr/bankapp/pkg/web"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

type repos struct {
	accounts accountservice.AccountRepo
	entries  accountservice.EntryRepo
	tx       accountservice.TxManager
}

func newRepos(conn *sql.DB, driver string) (repos, error) {
	switch driver {
	case configpkg.DriverMemory:
		store := memrepo.NewStore()
		return repos{accounts: store.Accounts(), entries: store.Entries(), tx: store}, nil
	case configpkg.DriverPostgres:
		if conn == nil {
			return repos{}, fmt.Errorf("%s driver requires a database connection", driver)
		}

		return repos{
			accounts: accountrepo.NewRepoPGS(conn),
			entries:  entryrepo.NewRepoPGS(conn),
			tx:       txrepo.NewRepoPGS(conn),
		}, nil
	}

	return repos{}, fmt.Errorf("unsupported db driver %q", driver)
}

// New creates Server type with instantiated domains and routes.
//
// Revoked tokens are kept in redis when redisClient is not nil and in memory otherwise.
func New(conn *sql.DB, redisClient *redis.Client, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	r, err := newRepos(conn, config.DBDriver)
	if err != nil {
		return nil, err
	}

	tokenMaker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	var revoker authservice.Revoker = revokerepo.NewRepoMemory()
	if redisClient != nil {
		revoker = revokerepo.NewRepoRedis(redisClient)
	}

	hasher := passpkg.NewBcrypt(config.BcryptCost)

	accountService := accountservice.New(r.accounts, r.entries, r.tx, hasher)
	authService := authservice.New(accountService, hasher, tokenMaker, revoker, config.AccessTokenDuration)

	authHandler := authdelivery.NewHandler(accountService, authService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(accountService)

	if err := web.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("cannot register validators: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	engine.GET("/health", server.health)
	engine.POST("/register", authHandler.Register)
	engine.POST("/login", authHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker, authService))

	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/account", accountHandler.Get)
	authRoutes.POST("/account/deposit", accountHandler.Deposit)
	authRoutes.POST("/account/withdraw", accountHandler.Withdraw)
	authRoutes.POST("/account/transfer", transferHandler.Create)
	authRoutes.GET("/account/transactions", accountHandler.History)

	return server, nil
}

func (s *Server) health(gctx *gin.Context) {
	if s.DB != nil {
		if err := s.DB.PingContext(gctx.Request.Context()); err != nil {
			zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Msg("database is unreachable")
			gctx.JSON(http.StatusServiceUnavailable, web.Response{Error: "database is unreachable"})

			return
		}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: "ok"})
}
