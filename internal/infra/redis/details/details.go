package infra_redis_details

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_movie "github.com/Klaiveft/What2Watch/internal/usecase/movie"
	"github.com/go-redis/redis"
)

type detailsDTO struct {
	TMDBID      int64    `json:"tmdb_id"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	Runtime     int      `json:"runtime"`
	Genres      []string `json:"genres"`
}

func toDTO(d model.MovieDetails) detailsDTO {
	return detailsDTO(d)
}

func (d detailsDTO) toDomain() model.MovieDetails {
	return model.MovieDetails(d)
}

// Driver caches movie metadata as JSON strings.
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

func (d *Driver) Get(ctx context.Context, tmdbID int64) (model.MovieDetails, error) {
	raw, err := d.client.WithContext(ctx).Get(d.fullKey(tmdbID)).Bytes()
	if err == redis.Nil {
		return model.MovieDetails{}, usecase_movie.ErrCacheMiss
	}
	if err != nil {
		return model.MovieDetails{}, err
	}

	var dto detailsDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return model.MovieDetails{}, fmt.Errorf("decode cached details %d: %w", tmdbID, err)
	}
	return dto.toDomain(), nil
}

func (d *Driver) Set(ctx context.Context, details model.MovieDetails) error {
	raw, err := json.Marshal(toDTO(details))
	if err != nil {
		return err
	}
	return d.client.WithContext(ctx).Set(d.fullKey(details.TMDBID), raw, d.ttl).Err()
}

func (d *Driver) fullKey(tmdbID int64) string {
	return d.key + ":" + strconv.FormatInt(tmdbID, 10)
}
