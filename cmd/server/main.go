package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/renatodellosso/Stockbot/internal/command"
	"github.com/renatodellosso/Stockbot/internal/config"
	"github.com/renatodellosso/Stockbot/internal/db"
	"github.com/renatodellosso/Stockbot/internal/events"
	httpserver "github.com/renatodellosso/Stockbot/internal/http"
	"github.com/renatodellosso/Stockbot/internal/identity"
	"github.com/renatodellosso/Stockbot/internal/portfolio"
	"github.com/renatodellosso/Stockbot/internal/quote"
	"github.com/renatodellosso/Stockbot/internal/trading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		users      identity.Store
		portfolios portfolio.Store
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db", zap.Error(err))
		}
		defer dbpool.Close()
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		pgUsers := identity.NewPostgres(dbpool)
		users = pgUsers
		portfolios = portfolio.NewPostgres(dbpool, pgUsers)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		memUsers := identity.NewMem()
		users = memUsers
		portfolios = portfolio.NewMem(memUsers)
	}

	source := quote.NewYahooClient(quote.WithBaseURL(cfg.QuoteBaseURL))
	quotes, err := quote.NewCached(source, 1<<24 /* ~16MB */, cfg.QuoteCacheTTL)
	if err != nil {
		logger.Fatal("quote cache", zap.Error(err))
	}

	svc := trading.New(users, portfolios, quotes, logger)
	svc.QuoteTimeout = cfg.QuoteTimeout

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer pub.Close()
		svc.Events = pub
	}

	registry := command.NewRegistry(svc, logger)
	s := httpserver.NewServer(registry, logger, cfg.CORSOrigin)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: s.R}
	go func() {
		logger.Info("http listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = server.Shutdown(ctxShut)
	logger.Info("shutdown complete")
}
