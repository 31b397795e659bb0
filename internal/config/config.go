// Package config provides environment-driven runtime configuration.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs for the reservation servers.
type Config struct {
	HTTPAddr         string
	RedisAddr        string
	RedisPoolSize    int
	MySQLDSN         string // empty disables durable job records
	LogLevel         string
	InitialSeatCount int64
	QueueBuffer      int
	ShutdownTimeout  time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from the environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":1245"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPoolSize:    atoienv("REDIS_POOL_SIZE", 100),
		MySQLDSN:         getenv("MYSQL_DSN", ""),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		InitialSeatCount: int64(atoienv("INITIAL_SEATS_COUNT", 50)),
		QueueBuffer:      atoienv("QUEUE_BUFFER", 1024),
		ShutdownTimeout:  durenvs("SHUTDOWN_TIMEOUT", 5),
	}
}
