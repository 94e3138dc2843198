package infra_redis_session

import (
	"time"

	"github.com/go-redis/redis"
)

// Driver stores anonymous session tokens under an optional key prefix.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) Set(key string, value string, ttl time.Duration) error {
	return d.client.Set(d.getFullKey(key), value, ttl).Err()
}

// Get returns "" when the token is unknown or expired.
func (d *Driver) Get(key string) (string, error) {
	val, err := d.client.Get(d.getFullKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Touch extends the token lifetime. Unknown tokens are ignored.
func (d *Driver) Touch(key string, ttl time.Duration) error {
	return d.client.Expire(d.getFullKey(key), ttl).Err()
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}
