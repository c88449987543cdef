package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/52poke/kvgate/internal/cache"
	"github.com/52poke/kvgate/internal/config"
	"github.com/52poke/kvgate/internal/http"
	"github.com/52poke/kvgate/internal/logging"
	"github.com/52poke/kvgate/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := cache.NewRedisStore(cache.NewRedisClient(cache.RedisOptions{
		Addr:         cfg.BackendAddr,
		Password:     cfg.BackendPassword,
		DB:           cfg.BackendDB,
		PoolSize:     cfg.BackendPoolSize,
		DialTimeout:  cfg.BackendDialTimeout,
		ReadTimeout:  cfg.BackendReadTimeout,
		WriteTimeout: cfg.BackendWriteTimeout,
	}))

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.BackendDialTimeout)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("backend not reachable at startup", zap.String("addr", cfg.BackendAddr), zap.Error(err))
	} else {
		logger.Info("backend reachable", zap.String("addr", cfg.BackendAddr))
	}
	cancel()

	var backend cache.Backend = store
	if cfg.MetricsAddr != "" {
		m := metrics.New()
		backend = m.Wrap(store)
		go serveMetrics(cfg.MetricsAddr, m, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpx.NewHandler(backend, logger)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(logging.Middleware(logger)),
	}

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("metrics listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
