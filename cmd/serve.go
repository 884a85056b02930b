package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/cache"
	"github.com/eerojala/My-video-game-collection/db"
	"github.com/eerojala/My-video-game-collection/handlers"
	"github.com/eerojala/My-video-game-collection/integrity"
	"github.com/eerojala/My-video-game-collection/monitoring"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.OpenAndMigrate(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	log.WithField("driver", cfg.DBDriver).Info("Database connected")

	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedis(ctx, cache.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without cache and login rate limit")
		} else {
			defer redisCache.Close()
			log.Info("Redis connected")
		}
	}

	s := store.New(conn)
	policy, err := auth.NewPolicy()
	if err != nil {
		return err
	}
	authService := auth.NewService(s.Users, policy, auth.Options{Secret: cfg.Secret, TokenTTL: cfg.TokenTTL})
	metrics := monitoring.NewMetrics()

	statsJob := monitoring.NewStatsJob(s, metrics, log)
	if err := statsJob.Start(ctx, cfg.StatsRefresh); err != nil {
		return err
	}
	defer statsJob.Stop()

	h := handlers.New(handlers.Deps{
		Store:       s,
		Coordinator: integrity.New(s, log),
		Auth:        authService,
		Cache:       redisCache,
		Metrics:     metrics,
		Log:         log,
	})
	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins:     cfg.CORSOrigins,
		Limiter:         redisCache,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.UseHTTPS {
			server.TLSConfig = &tls.Config{
				MinVersion:       tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP384, tls.CurveP256},
			}
			log.WithField("port", cfg.Port).Info("Starting server with HTTPS")
			errCh <- server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		log.WithField("port", cfg.Port).Info("Starting server with HTTP")
		if cfg.Release() {
			log.Warn("Running without HTTPS. Set USE_HTTPS=true for production")
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
