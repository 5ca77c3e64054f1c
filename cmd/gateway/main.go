// Command gateway runs the flight booking gateway: it fronts the flights
// catalog, the tickets store, and the loyalty ledger, guarding reads with
// per-collaborator circuit breakers and orchestrating the purchase and
// cancellation flows.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/clients"
	"github.com/BlackLightinger/rsoi-lab-03/internal/config"
	httpapi "github.com/BlackLightinger/rsoi-lab-03/internal/http"
	"github.com/BlackLightinger/rsoi-lab-03/internal/observability"
	"github.com/BlackLightinger/rsoi-lab-03/internal/server"
	"github.com/BlackLightinger/rsoi-lab-03/internal/services"
	"github.com/BlackLightinger/rsoi-lab-03/internal/sysutil"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("gateway")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.RequireCollaborators(); err != nil {
		log.Fatal().Err(err).Msg("missing collaborator configuration")
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
		if err := shutdownOTel(shCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	hc := &http.Client{Timeout: cfg.Gateway.ClientTimeout}
	policy := cfg.Gateway.Breaker

	flights := clients.NewFlights(cfg.Gateway.FlightsURL, hc,
		breaker.New(clients.FlightsServiceName, policy.FailureThreshold, policy.RecoveryTimeout))
	tickets := clients.NewTickets(cfg.Gateway.TicketsURL, hc,
		breaker.New(clients.TicketServiceName, policy.FailureThreshold, policy.RecoveryTimeout))
	privileges := clients.NewPrivileges(cfg.Gateway.PrivilegesURL, hc,
		breaker.New(clients.PrivilegeServiceName, policy.FailureThreshold, policy.RecoveryTimeout))

	svc := services.NewGateway(flights, tickets, privileges,
		cfg.Gateway.Retry.Deadline, cfg.Gateway.Retry.Interval)

	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	server.Run(ctx, r, cfg, "gateway", version)
}
