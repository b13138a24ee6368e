package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherbox/internal/handlers"
	"weatherbox/internal/logger"
	"weatherbox/internal/repository"
	"weatherbox/internal/scheduler"
	"weatherbox/internal/server"
	"weatherbox/internal/service"
	"weatherbox/internal/weatherapi"

	"github.com/spf13/viper"
)

const (
	defaultCollectTick  = 30 * time.Second
	defaultPushInterval = 30 * time.Second
)

// @title           Weatherbox API
// @version         1.0
// @description     Local environmental monitoring dashboard: sensor history, trend analysis, rule-based predictions, event tagging and a live WebSocket push.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(logLevel())

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	hub := handlers.NewHub()
	services := service.NewService(repos, newComparer(), hub)
	apiHandler := handlers.NewHandler(services, log, hub)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the sensor collector (via composed service)
	go services.Collector.Run(ctx, durationOr("collector.tick", defaultCollectTick))

	// start the periodic live push
	sched := scheduler.New(services.Monitoring, durationOr("push.interval", defaultPushInterval), log)
	if err := sched.Start(); err != nil {
		log.Fatalw("failed to start push scheduler", "err", err)
	}
	defer sched.Stop()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

// durationOr reads a duration key ("30s", "5m") with a fallback.
func durationOr(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

// newComparer builds the official-API comparer, or nil when no key is
// configured. The environment variable wins over the config file so the key
// stays out of version control.
func newComparer() service.Comparer {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("openweather.api_key")
	}
	if apiKey == "" {
		return nil
	}
	return weatherapi.NewClient(weatherapi.Config{
		APIKey: apiKey,
		Lat:    viper.GetFloat64("station.lat"),
		Lon:    viper.GetFloat64("station.lon"),
	})
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "weather.db")
		dbPath = "weather.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
