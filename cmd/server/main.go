package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notepad/internal/accounts"
	"notepad/internal/api"
	"notepad/internal/auth"
	"notepad/internal/config"
	"notepad/internal/logger"
	"notepad/internal/mcp"
	"notepad/internal/metrics"
	"notepad/internal/middleware"
	"notepad/internal/notes"
	"notepad/internal/session"
	"notepad/internal/store/sqlstore"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("notepad", "info", "json").WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New("notepad", cfg.Logging.Level, cfg.Logging.Format)

	// Initialize store
	store, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()
	store.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	m := metrics.New()

	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		client, err := session.DialRedis(ctx, cfg.Session.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
	default:
		mem := session.NewMemoryStore(cfg.Session.TTL)
		mem.OnCount(m.SetGuestSessions)
		go mem.RunSweeper(ctx, cfg.Session.SweepInterval)
		sessions = mem
	}

	verifier := auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Expiration)
	noteService := notes.NewService(store)
	migrator := notes.NewMigrator(store, log, m)
	accountService := accounts.NewService(store, verifier, migrator)
	handlers := api.NewHandlers(noteService, accountService, store, log, cfg.JWT.Expiration, cfg.Server.Production())

	routerCfg := api.RouterConfig{
		Handlers: handlers,
		Verifier: verifier,
		Sessions: sessions,
		SessionOptions: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Server.Production(),
		},
		Metrics: m,
		Log:     log,
	}
	if cfg.MCP.Enabled {
		routerCfg.MCP = mcp.NewMCPServer(store).Handler()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"env":      cfg.Server.Env,
			"driver":   cfg.Database.Driver,
			"sessions": cfg.Session.Backend,
			"mcp":      cfg.MCP.Enabled,
		}).Info("Starting notepad server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}
