package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"weeklygrind/plan-tracker/internal/api"
	"weeklygrind/plan-tracker/internal/cache"
	"weeklygrind/plan-tracker/internal/config"
	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/service"
	"weeklygrind/plan-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ensureIndexesOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&ensureIndexesOnStart, "ensure-indexes", true, "create MongoDB indexes before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config) error {
	log.Infoln("starting Weekly Grind server...")

	repos, closeRepos, err := openRepositories(ctx, cfg.Database, ensureIndexesOnStart)
	if err != nil {
		return err
	}
	defer closeRepos()

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("grind", "main", promRegistry)

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
	} else {
		log.Warnln("s3.bucket_name not set, plan export is disabled")
	}

	var rateLimiter api.RequestRateLimiter
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0, // use default DB
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis: %s", err)
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
		rateLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Warnln("redis.addr not set, share preview is not rate limited")
	}

	lookup := cache.NewLibraryNames(
		service.NewLibraryLookup(repos.Library),
		cfg.Cache.SizeMB,
		cfg.Cache.TTL,
		metricsManager,
	)
	resolver := service.NewExerciseNameResolver(lookup)

	services := api.Services{
		Auth:    service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Plans:   service.NewPlanService(repos, resolver, fileStorage, cfg.S3.PresignTTL, metricsManager),
		Tracker: service.NewTrackerService(repos, resolver, metricsManager),
		Library: service.NewLibraryService(repos.Library),
		Shares:  service.NewShareService(repos, resolver, cfg.App.PublicURL, cfg.Share.TTL, metricsManager),
	}

	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		JWTSecret:               cfg.JWT.Secret,
		Metrics:                 metricsManager,
		Gatherer:                promRegistry,
		RateLimiter:             rateLimiter,
		PreviewAllowedPerMinute: cfg.Redis.PreviewPerMinute,
	}, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Infoln("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Infoln("server exiting")
	return nil
}
