// Command gatehoused runs the authentication service: the JSON API,
// the guarded browser pages and the credential rate limiter.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denizatac/gatehouse/config"
	"github.com/denizatac/gatehouse/mail"
	"github.com/denizatac/gatehouse/ratelimit"
	"github.com/denizatac/gatehouse/server"
	"github.com/denizatac/gatehouse/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, messages, cleanup, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	limiter, closeLimiter := openLimiter(cfg, logger)
	defer closeLimiter()

	srv, err := server.New(cfg, logger, users, messages, openMailer(cfg, logger), limiter)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// openStores selects postgres when DATABASE_URL is set and the
// in-memory store otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Users, store.Messages, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		mem := store.NewMemory()
		return mem, mem, func() {}, nil
	}

	pg, err := store.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, nil, err
	}
	logger.Info("connected to postgres")
	return pg, pg, func() { pg.Close() }, nil
}

// openLimiter selects redis when REDIS_ADDR is set so several instances
// share one ceiling; otherwise each instance counts alone in memory.
func openLimiter(cfg config.Config, logger *slog.Logger) (ratelimit.Store, func()) {
	limits := ratelimit.Config{Window: cfg.RateLimitWindow, Limit: cfg.RateLimitMax}

	if cfg.RedisAddr == "" {
		mem := ratelimit.NewMemoryStore(limits)
		return mem, mem.Close
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Info("rate limit counters in redis", "addr", cfg.RedisAddr)
	return ratelimit.NewRedisStore(client, limits), func() { client.Close() }
}

func openMailer(cfg config.Config, logger *slog.Logger) mail.Sender {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, reset emails are logged instead of sent")
		return &mail.Log{Logger: logger}
	}
	return &mail.SMTP{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}
