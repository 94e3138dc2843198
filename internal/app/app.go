package app

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klaiveft/What2Watch/internal/config"
	http_auth "github.com/Klaiveft/What2Watch/internal/delivery/http/auth"
	http_init "github.com/Klaiveft/What2Watch/internal/delivery/http/init"
	http_access_middleware "github.com/Klaiveft/What2Watch/internal/delivery/http/middleware/access"
	http_auth_middleware "github.com/Klaiveft/What2Watch/internal/delivery/http/middleware/auth"
	http_member_middleware "github.com/Klaiveft/What2Watch/internal/delivery/http/middleware/member"
	http_movie "github.com/Klaiveft/What2Watch/internal/delivery/http/movie"
	http_proposal "github.com/Klaiveft/What2Watch/internal/delivery/http/proposal"
	http_room "github.com/Klaiveft/What2Watch/internal/delivery/http/room"
	http_swagger "github.com/Klaiveft/What2Watch/internal/delivery/http/swagger"
	http_voting "github.com/Klaiveft/What2Watch/internal/delivery/http/voting"
	ws_room "github.com/Klaiveft/What2Watch/internal/delivery/ws/room"
	infra_memory "github.com/Klaiveft/What2Watch/internal/infra/memory"
	infra_pg_init "github.com/Klaiveft/What2Watch/internal/infra/postgres/init"
	infra_postgres_listener "github.com/Klaiveft/What2Watch/internal/infra/postgres/listener"
	infra_postgres_proposal "github.com/Klaiveft/What2Watch/internal/infra/postgres/proposal"
	infra_postgres_room "github.com/Klaiveft/What2Watch/internal/infra/postgres/room"
	infra_postgres_vote "github.com/Klaiveft/What2Watch/internal/infra/postgres/vote"
	infra_redis_codes "github.com/Klaiveft/What2Watch/internal/infra/redis/codes"
	infra_redis_details "github.com/Klaiveft/What2Watch/internal/infra/redis/details"
	infra_redis_init "github.com/Klaiveft/What2Watch/internal/infra/redis/init"
	infra_redis_session "github.com/Klaiveft/What2Watch/internal/infra/redis/session"
	infra_s3 "github.com/Klaiveft/What2Watch/internal/infra/s3"
	"github.com/Klaiveft/What2Watch/internal/infra/s3mock"
	infra_tmdb "github.com/Klaiveft/What2Watch/internal/infra/tmdb"
	service_anonymous_auth "github.com/Klaiveft/What2Watch/internal/service/auth/anonymous"
	"github.com/Klaiveft/What2Watch/internal/service/notify"
	"github.com/Klaiveft/What2Watch/internal/service/scheduler"
	usecase_movie "github.com/Klaiveft/What2Watch/internal/usecase/movie"
	usecase_proposal "github.com/Klaiveft/What2Watch/internal/usecase/proposal"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	usecase_vote "github.com/Klaiveft/What2Watch/internal/usecase/vote"
)

type CodeRegistry interface {
	usecase_room.CodeRegistry
	usecase_vote.CodeReleaser
}

type Posters interface {
	usecase_proposal.PosterMirror
	usecase_vote.PosterLinker
}

// Components are the storage and integration backends the usecases run on.
// Go fills them from config; tests fill them with in-memory versions.
type Components struct {
	Rooms     usecase_room.RoomRepository
	Proposals usecase_proposal.Repository
	Votes     usecase_vote.Repository
	Resolver  usecase_vote.Resolver
	Codes     CodeRegistry

	Sessions service_anonymous_auth.SessionCache
	Details  usecase_movie.DetailsCache
	Metadata usecase_movie.MetadataClient
	Posters  Posters

	Hub *notify.Hub
}

// Server is the assembled HTTP surface plus the usecase the sweeper drives.
type Server struct {
	Pool  *http_init.ControllerPool
	Votes *usecase_vote.Usecase
}

func Build(cfg *config.Config, c Components) *Server {
	roomUC := usecase_room.New(c.Rooms, c.Codes)
	movieUC := usecase_movie.New(c.Metadata, c.Details)
	proposalUC := usecase_proposal.New(c.Proposals, movieUC, c.Posters)
	voteUC := usecase_vote.New(c.Votes, c.Resolver, c.Posters, c.Codes)

	authService := service_anonymous_auth.New(c.Sessions, &cfg.Session.TTL)
	auth := http_auth_middleware.New(authService).AuthRequired()
	member := http_member_middleware.New(roomUC).MemberRequired()
	rateLimit := http_access_middleware.NewLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst).RateLimit()

	pool := http_init.NewControllerPool(cfg.HTTP.AllowedOrigins)
	pool.Add(http_swagger.New(""))
	pool.Add(http_auth.New(authService, rateLimit))
	pool.Add(http_room.New(roomUC, auth, member, rateLimit))
	pool.Add(http_movie.New(movieUC, cfg.TMDB.ImageBaseURL, auth))
	pool.Add(http_proposal.New(proposalUC, auth, member))
	pool.Add(http_voting.New(voteUC, auth, member))
	pool.Add(ws_room.New(c.Hub, auth, member))
	pool.Register()

	return &Server{
		Pool:  pool,
		Votes: voteUC,
	}
}

func Go(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub()
	go hub.Run(ctx)

	c := Components{
		Metadata: infra_tmdb.New(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, cfg.TMDB.Timeout),
		Hub:      hub,
	}

	switch cfg.Store.Driver {
	case "postgres":
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		defer pgConn.Close()
		infra_pg_init.MustMigrate(pgConn)

		listener := infra_postgres_listener.MustListen(cfg.Postgres, hub)
		go listener.Run(ctx)

		voteRepository := infra_postgres_vote.New(pgConn)
		c.Rooms = infra_postgres_room.New(pgConn)
		c.Proposals = infra_postgres_proposal.New(pgConn)
		c.Votes = voteRepository
		c.Resolver = voteRepository
	default:
		slog.Warn("using in-memory store, rooms are lost on restart")
		store := infra_memory.New(hub)
		c.Rooms = store
		c.Proposals = store
		c.Votes = store
		c.Resolver = store
	}

	if cfg.Redis.Enabled {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		defer redisConn.Close()
		c.Sessions = infra_redis_session.New(redisConn, "session_cache")
		c.Codes = infra_redis_codes.New(redisConn, "room_code", cfg.Session.CodeTTL)
		c.Details = infra_redis_details.New(redisConn, "tmdb_details", cfg.TMDB.DetailsTTL)
	} else {
		c.Sessions = infra_memory.NewSessions()
		c.Codes = infra_memory.NewCodes(cfg.Session.CodeTTL)
		c.Details = infra_memory.NewDetails(cfg.TMDB.DetailsTTL)
	}

	if cfg.Posters.Enabled() {
		posters := infra_s3.New(infra_s3.MustEstablishConn(cfg.Posters),
			cfg.Posters.Bucket, cfg.Posters.Prefix, cfg.TMDB.ImageBaseURL, cfg.Posters.PresignTTL)
		if err := posters.CheckBucket(ctx); err != nil {
			log.Fatalf("poster bucket: %v", err)
		}
		c.Posters = posters
	} else {
		c.Posters = s3mock.New(cfg.TMDB.ImageBaseURL)
	}

	server := Build(cfg, c)

	sweeper, err := scheduler.New(server.Votes, cfg.Scheduler.SweepInterval)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer func() {
		if err := sweeper.Shutdown(); err != nil {
			slog.Error("scheduler shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if err := server.Pool.RunAll(ctx, cfg.HTTP); err != nil {
		slog.Error("http server stopped", slog.String("error", err.Error()))
	}
}
