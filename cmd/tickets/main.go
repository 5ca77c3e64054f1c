// Command tickets runs the tickets store collaborator: entity-shaped CRUD
// keyed by ticket UID.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/BlackLightinger/rsoi-lab-03/internal/config"
	"github.com/BlackLightinger/rsoi-lab-03/internal/http/middleware"
	"github.com/BlackLightinger/rsoi-lab-03/internal/observability"
	"github.com/BlackLightinger/rsoi-lab-03/internal/repo"
	"github.com/BlackLightinger/rsoi-lab-03/internal/server"
	"github.com/BlackLightinger/rsoi-lab-03/internal/sysutil"
	"github.com/BlackLightinger/rsoi-lab-03/internal/ticketapi"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("tickets")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(shCtx)
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("db tracing setup failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	r := gin.New()
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ticketapi.Register(r, db)

	server.Run(ctx, r, cfg, "tickets", version)
}
