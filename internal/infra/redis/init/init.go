package infra_redis_init

import (
	"log"
	"net"
	"time"

	"github.com/Klaiveft/What2Watch/internal/config"
	"github.com/go-redis/redis"
)

// MustEstablishConn returns a pinged client. Sessions, room codes and
// movie details share it under different key prefixes.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	if err := client.Ping().Err(); err != nil {
		log.Fatalf("redis ping %s failed: %v", addr, err)
	}

	return client
}
