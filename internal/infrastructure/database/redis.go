package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates the Redis client backing verification codes and resend
// throttles.
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
