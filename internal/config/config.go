package config

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host           string        `env:"HTTP_HOST" envDefault:"localhost"`
	Port           string        `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS   float64       `env:"HTTP_RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int           `env:"HTTP_RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownGrace  time.Duration `env:"HTTP_SHUTDOWN_GRACE" envDefault:"10s"`
}

type Store struct {
	// Driver is "postgres" or "memory".
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

type RedisCache struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST" envDefault:"redis"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:"shared"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Postgres struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"admin"`
	Password string `env:"DB_PASSWORD" envDefault:"shared"`
	DBName   string `env:"DB_NAME" envDefault:"what2watch"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type TMDB struct {
	APIKey       string        `env:"TMDB_API_KEY"`
	BaseURL      string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w500"`
	Timeout      time.Duration `env:"TMDB_TIMEOUT" envDefault:"10s"`
	DetailsTTL   time.Duration `env:"TMDB_DETAILS_TTL" envDefault:"24h"`
}

type Posters struct {
	Bucket     string        `env:"S3_BUCKET"`
	Prefix     string        `env:"S3_PREFIX" envDefault:"posters"`
	Endpoint   string        `env:"S3_ENDPOINT"`
	Region     string        `env:"S3_REGION"`
	AccessKey  string        `env:"S3_ACCESS_KEY"`
	SecretKey  string        `env:"S3_SECRET_KEY"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" envDefault:"1h"`
}

func (p Posters) Enabled() bool {
	return p.Bucket != ""
}

type Session struct {
	TTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	CodeTTL time.Duration `env:"ROOM_CODE_TTL" envDefault:"24h"`
}

type Scheduler struct {
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
}

type Config struct {
	HTTP      HTTPServer
	Store     Store
	Redis     RedisCache
	Postgres  Postgres
	TMDB      TMDB
	Posters   Posters
	Session   Session
	Scheduler Scheduler
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	cfg, err := FromFile(*configPath)
	if err != nil {
		log.Fatalf("%s %v", logtag, err)
	}
	return cfg
}

// FromFile loads path (or .env when path is empty) into the process
// environment and parses it.
func FromFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("err loading env from file : %w", err)
		}
		log.Printf("%s using env from : %s", logtag, path)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{
		OnSet: func(tag string, value any, isDefault bool) {
			if isDefault {
				log.Printf("%s %s undefined. Using default value %v", logtag, tag, mask(tag, value))
				return
			}
			log.Printf("%s %s = %v", logtag, tag, mask(tag, value))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Store.Driver != "postgres" && cfg.Store.Driver != "memory" {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func mask(tag string, value any) any {
	if strings.Contains(tag, "PASSWORD") || strings.Contains(tag, "KEY") {
		if s, ok := value.(string); ok && s != "" {
			return "***"
		}
	}
	return value
}
