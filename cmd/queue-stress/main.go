// queue-stress drives concurrent seat reservations through the real queue
// against a running Redis and reports how many of N requests won the K
// available seats.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/adapter/storage"
	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/core/service"
	"github.com/rl1809/reservation-service/internal/queue"
)

const (
	initialSeats  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	counters := storage.NewRedisAdapter(rdb)
	q := queue.New("reserve_seat_stress")
	defer q.Close()

	seats := service.NewSeatService(counters, q, zap.NewNop().Sugar())
	if err := seats.ResetSeats(ctx, initialSeats); err != nil {
		log.Fatalf("failed to reset seat pool: %v", err)
	}

	events := q.Subscribe(totalRequests * 2)

	var enqueued, blocked atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seats.RequestReservation(ctx)
			switch {
			case err == nil:
				enqueued.Add(1)
			case errors.Is(err, domain.ErrReservationsBlocked):
				blocked.Add(1)
			default:
				log.Printf("enqueue failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if err := seats.StartProcessing(); err != nil {
		log.Fatalf("failed to start processing: %v", err)
	}

	var completed, failed int
	deadline := time.After(30 * time.Second)
	for completed+failed < int(enqueued.Load()) {
		select {
		case ev := <-events:
			switch ev.Kind {
			case domain.EventCompleted:
				completed++
			case domain.EventFailed:
				failed++
			}
		case <-deadline:
			log.Fatalf("timed out: %d of %d jobs resolved", completed+failed, enqueued.Load())
		}
	}
	elapsed := time.Since(start)

	remaining, _ := seats.AvailableSeats(ctx)
	fmt.Printf("requests=%d enqueued=%d blocked=%d completed=%d failed=%d\n",
		totalRequests, enqueued.Load(), blocked.Load(), completed, failed)
	fmt.Printf("remaining_seats=%d elapsed=%s\n", remaining, elapsed)

	if completed != initialSeats {
		log.Fatalf("expected %d completed reservations, got %d", initialSeats, completed)
	}
	if remaining != 0 {
		log.Fatalf("expected empty pool, got %d", remaining)
	}
	fmt.Println("OK")
}
