// Package main starts the bank API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/bankapp/cmd/httpserver"
	"github.com/go-petr/bankapp/db"
	"github.com/go-petr/bankapp/internal/middleware"
	"github.com/go-petr/bankapp/pkg/configpkg"
	"github.com/go-petr/bankapp/pkg/dbpkg"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 5 * time.Second

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var conn *sql.DB

	if config.DBDriver == configpkg.DriverPostgres {
		conn, err = dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer conn.Close()

		if err := dbpkg.Migrate(conn, db.Migrations, db.MigrationDir); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}
	}

	var redisClient *redis.Client

	if config.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("address", config.RedisAddress).Msg("cannot connect to redis")
		}
	}

	server, err := httpserver.New(conn, redisClient, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("address", config.ServerAddress).Str("db_driver", config.DBDriver).Msg("BANK API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
}
