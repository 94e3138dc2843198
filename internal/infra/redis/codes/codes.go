package infra_redis_codes

import (
	"context"
	"time"

	"github.com/go-redis/redis"
)

// Driver reserves room codes with SETNX. A reservation expires on its own
// after ttl, Release frees it once the room is done.
type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(
	client *redis.Client,
	key string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (d *Driver) Reserve(ctx context.Context, code string) (bool, error) {
	return d.client.WithContext(ctx).SetNX(d.fullKey(code), time.Now().Unix(), d.ttl).Result()
}

func (d *Driver) Release(ctx context.Context, code string) error {
	return d.client.WithContext(ctx).Del(d.fullKey(code)).Err()
}

func (d *Driver) fullKey(code string) string {
	return d.key + ":" + code
}
