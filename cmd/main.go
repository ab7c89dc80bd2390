package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"home_energy/internal/config"
	"home_energy/internal/handlers"
	"home_energy/internal/ingest"
	"home_energy/internal/logger"
	"home_energy/internal/metrics"
	"home_energy/internal/repository"
	"home_energy/internal/repository/db"
	"home_energy/internal/server"
	"home_energy/internal/service"
)

func main() {
	// load configs/config.yml (ENERGY_CONFIG picks another file)
	cfg, err := config.Load(os.Getenv("ENERGY_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	loc, _ := cfg.Location() // validated by Load

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	publisher := openPublisher(cfg.MQTT, log)
	if publisher != nil {
		defer publisher.Close()
	}

	// wire dependencies
	m := metrics.New()
	repos := repository.NewRepository(conn)
	opts := service.Options{
		SigningKey:  cfg.Auth.SigningKey,
		TokenTTL:    cfg.Auth.TokenTTL,
		PricePerKWh: cfg.Pricing.PricePerKWh,
		Currency:    cfg.Pricing.Currency,
		Location:    loc,
		Retry:       ingest.RetryPolicy{MaxRetries: cfg.Telemetry.RetryMax, Backoff: cfg.Telemetry.RetryBackoff},
		Metrics:     m,
		Log:         log,
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	services := service.NewService(repos, opts)
	apiHandler := handlers.NewHandler(services, log, m).WithOptions(handlers.Options{
		CORS:           handlers.CORS{AllowedOrigins: cfg.CORS.AllowedOrigins, MaxAge: cfg.CORS.MaxAge},
		TrustedProxies: cfg.Server.TrustedProxies,
		AuthLimit:      handlers.RateLimit{Attempts: cfg.RateLimit.AuthAttempts, Window: cfg.RateLimit.AuthWindow},
		DeviceLimit:    handlers.RateLimit{Attempts: cfg.RateLimit.DeviceAttempts, Window: cfg.RateLimit.DeviceWindow},
	})

	// start HTTP server
	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server_started", "port", cfg.Port, "db", cfg.DB.Path, "timezone", loc.String(), "mqtt", publisher != nil)

	// graceful shutdown
	waitForShutdown(srv, cfg.Server.ShutdownTimeout, log)
}

// openPublisher connects the MQTT mirror when enabled. A broker that cannot be
// reached is logged and the server runs without the mirror.
func openPublisher(c config.MQTTConfig, log *logger.Logger) *ingest.MQTTPublisher {
	if !c.Enabled {
		return nil
	}
	p, err := ingest.NewMQTTPublisher(ingest.MQTTOptions{
		Broker:      c.Broker,
		TopicPrefix: c.TopicPrefix,
		ClientID:    c.ClientID,
		Username:    c.Username,
		Password:    c.Password,
	})
	if err != nil {
		log.Warnw("mqtt_unavailable", "broker", c.Broker, "err", err)
		return nil
	}
	return p
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
