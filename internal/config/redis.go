package config

// Redis backs the refresh-token store, the catalog response cache and
// the login rate limiter.  None of those are required for the service
// to function: when the connection fails at startup this constructor
// returns nil and every consumer degrades gracefully.

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the environment:
//
//	REDIS_ADDR     host:port (default localhost:6379)
//	REDIS_PASSWORD optional password
//	REDIS_DB       database number (default 0)
//
// The returned client is nil if the server cannot be pinged.
func NewRedisClient() *redis.Client {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	dbNum := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
