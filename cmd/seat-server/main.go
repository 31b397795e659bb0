package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/reservation-service/internal/adapter/handler"
	"github.com/rl1809/reservation-service/internal/adapter/storage"
	"github.com/rl1809/reservation-service/internal/config"
	"github.com/rl1809/reservation-service/internal/core/service"
	"github.com/rl1809/reservation-service/internal/obs"
	"github.com/rl1809/reservation-service/internal/queue"
)

func main() {
	cfg := config.Load()
	log := obs.NewLogger(cfg.LogLevel)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to connect redis", "addr", cfg.RedisAddr, "error", err)
	}
	log.Infow("connected to redis", "addr", cfg.RedisAddr)

	counters := storage.NewRedisAdapter(rdb)

	// Durable job records are optional; without a DSN the queue keeps
	// jobs in memory only.
	queueOpts := []queue.Option{
		queue.WithLogger(log),
		queue.WithBuffer(cfg.QueueBuffer),
	}
	var db *sql.DB
	if cfg.MySQLDSN != "" {
		var err error
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalw("failed to open mysql", "error", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalw("failed to ping mysql", "error", err)
		}
		log.Infow("connected to mysql")
		queueOpts = append(queueOpts, queue.WithJobRecords(storage.NewMySQLAdapter(db)))
	}

	q := queue.New("reserve_seat", queueOpts...)
	seats := service.NewSeatService(counters, q, log)
	seats.WatchJobs(ctx)

	// Reset the pool before opening the admission gate.
	if err := seats.ResetSeats(ctx, cfg.InitialSeatCount); err != nil {
		log.Fatalw("failed to reset seat pool", "error", err)
	}
	log.Infow("seat pool reset", "seats", cfg.InitialSeatCount)

	seatHandler := handler.NewSeatHandler(seats, log)
	mux := http.NewServeMux()
	seatHandler.Register(mux)
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	q.Close()
	rdb.Close()
	if db != nil {
		db.Close()
	}
	log.Infow("stopped")
}
