package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"pokerhub/internal/auth"
	"pokerhub/internal/db"
	"pokerhub/internal/locks"
	"pokerhub/internal/server"
	"pokerhub/internal/store"
	"pokerhub/internal/tournament"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("loading .env", "err", err)
	}
	cfg := loadConfig()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})

	st, locker := buildStore(cfg, logger)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)

	var database *db.DB
	if !cfg.DBDisabled {
		var err error
		database, err = db.New(db.Config{
			Driver:   cfg.DBDriver,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			logger.Fatal("opening database", "err", err)
		}
		logger.Info("database ready", "driver", cfg.DBDriver)
	}

	tournaments := tournament.NewService(st, locker, logger)
	if database != nil {
		tournaments.WithResultRecorder(database).WithBalanceLookup(database.Balance)
	}

	srv := server.New(st, locker, authService, database, tournaments, logger)
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.RunScheduler(ctx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// buildStore picks Redis when configured and falls back to the in-process
// store for single-instance development runs.
func buildStore(cfg Config, logger *log.Logger) (store.Store, locks.Locker) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory store; state will not survive restarts")
		return store.NewMemoryStore(), locks.NewMemoryLocker()
	}
	rs, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("connecting to redis", "err", err)
	}
	logger.Info("redis ready", "addr", cfg.RedisAddr)
	return rs, locks.NewRedisLocker(rs.Client())
}
