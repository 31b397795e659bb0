package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/reservation-service/internal/adapter/handler"
	"github.com/rl1809/reservation-service/internal/adapter/storage"
	"github.com/rl1809/reservation-service/internal/config"
	"github.com/rl1809/reservation-service/internal/core/service"
	"github.com/rl1809/reservation-service/internal/obs"
)

func main() {
	cfg := config.Load()
	log := obs.NewLogger(cfg.LogLevel)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to connect redis", "addr", cfg.RedisAddr, "error", err)
	}
	log.Infow("connected to redis", "addr", cfg.RedisAddr)

	counters := storage.NewRedisAdapter(rdb)
	stock := service.NewStockService(counters, nil, log)

	// Every item starts with zero reserved units.
	if err := stock.ResetStock(ctx); err != nil {
		log.Fatalw("failed to reset stock counters", "error", err)
	}
	log.Infow("stock counters reset", "products", len(stock.ListProducts()))

	stockHandler := handler.NewStockHandler(stock, log)
	mux := http.NewServeMux()
	stockHandler.Register(mux)
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Infow("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorw("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	rdb.Close()
	log.Infow("stopped")
}
