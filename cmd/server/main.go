package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sessions/filerepo"
	"github.com/jrsteele09/go-auth-client/sessions/memrepo"
	"github.com/jrsteele09/go-auth-client/sessions/sqliterepo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	repo, closeRepo, err := openRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := sessions.NewCredentialStore(repo)
	if err != nil {
		return fmt.Errorf("sessions.NewCredentialStore: %w", err)
	}

	gw, err := gateway.NewClient(c.GetAPIBaseURL(),
		gateway.WithTimeout(c.GetGatewayTimeout()),
		gateway.WithRateLimit(c.GetGatewayRateLimit(), c.GetGatewayBurst()),
	)
	if err != nil {
		return fmt.Errorf("gateway.NewClient: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager, err := auth.NewSessionManager(gw, store,
		auth.WithMetrics(metrics.NewCollector(registry)),
		auth.WithCheckInterval(c.GetRefreshCheckInterval()),
		auth.WithExpiryBuffer(c.GetExpiryBuffer()),
	)
	if err != nil {
		return fmt.Errorf("auth.NewSessionManager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("manager.Start: %w", err)
	}
	defer manager.Close()

	handler, err := server.New(c, manager, store, server.WithMetricsHandler(metrics.Handler(registry)))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// openRepo builds the key-value backend behind the credential store.
func openRepo(c config.Config) (sessions.Repo, func(), error) {
	switch c.GetStoreDriver() {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory credential store, sessions will not survive a restart")
		return memrepo.New(), func() {}, nil
	case config.StoreDriverSQLite:
		if err := os.MkdirAll(c.GetDataFolder(), 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating data folder: %w", err)
		}
		repo, err := sqliterepo.New(filepath.Join(c.GetDataFolder(), "session.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("sqliterepo.New: %w", err)
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Warn().Err(err).Msg("closing sqlite credential store")
			}
		}, nil
	default:
		repo, err := filerepo.New(c.GetDataFolder())
		if err != nil {
			return nil, nil, fmt.Errorf("filerepo.New: %w", err)
		}
		return repo, func() {}, nil
	}
}

func configureLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
