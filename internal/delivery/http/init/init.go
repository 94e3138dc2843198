package http_init

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/Klaiveft/What2Watch/internal/config"
	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	rg     *gin.RouterGroup
	engine *gin.Engine
	logger *slog.Logger
}

func NewControllerPool(allowedOrigins []string) *ControllerPool {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), cors.New(corsConfig(allowedOrigins)))
	rg := engine.Group(apiPrefix)
	return &ControllerPool{
		pool:   make([]Controller, 0, 10),
		rg:     rg,
		engine: engine,
		logger: slog.Default(),
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", http_common.UserTokenHeader}
	cfg.ExposeHeaders = []string{"Content-Length", http_common.UserTokenHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

func (pool *ControllerPool) Handler() http.Handler {
	return pool.engine
}

// RunAll serves until ctx is cancelled, then drains in-flight requests for
// at most cfg.ShutdownGrace.
func (pool *ControllerPool) RunAll(ctx context.Context, cfg config.HTTPServer) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           pool.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		pool.logger.Info("http server started", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to run HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	pool.logger.Info("http server stopped")
	return nil
}
