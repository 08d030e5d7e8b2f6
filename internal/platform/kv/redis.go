package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var RDB *redis.Client

// Connect dials Redis and keeps the client in RDB. A failed ping is returned
// rather than fatal so the server can fall back to the database for options.
func Connect(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return fmt.Errorf("kv: could not connect to redis at %s: %w", addr, err)
	}
	RDB = client
	log.WithField("addr", addr).Info("Successfully connected to Redis")
	return nil
}

func Close() {
	if RDB != nil {
		RDB.Close()
		log.Info("Redis connection closed.")
	}
}
