package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/config"
	dbRedis "github.com/kailas-cloud/resultgrid/internal/db/redis"
	logpkg "github.com/kailas-cloud/resultgrid/internal/logger"
	"github.com/kailas-cloud/resultgrid/internal/metrics"
	"github.com/kailas-cloud/resultgrid/internal/render"
	hitsrepo "github.com/kailas-cloud/resultgrid/internal/repository/hits"
	chiTransport "github.com/kailas-cloud/resultgrid/internal/transport/chi"
	natsTransport "github.com/kailas-cloud/resultgrid/internal/transport/nats"
	healthuc "github.com/kailas-cloud/resultgrid/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/resultgrid/internal/usecase/session"
	"github.com/kailas-cloud/resultgrid/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting resultgrid API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	dashboards, err := cfg.DashboardDescriptors()
	if err != nil {
		logger.Fatal("Invalid dashboards", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register table metrics explicitly (no init())
	metrics.RegisterTableMetrics()

	hits := hitsrepo.New(store, hitsrepo.Config{
		IndexName:      cfg.Index.Name,
		KeyPrefix:      cfg.Index.KeyPrefix,
		SortableFields: cfg.Index.SortableFields,
		MaxBatchSize:   cfg.Index.MaxBatchSize,
	},
		hitsrepo.WithLogger(logger),
		hitsrepo.WithBreaker(hitsrepo.BreakerConfig{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            time.Duration(cfg.Breaker.IntervalSec) * time.Second,
			Timeout:             time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		}),
	)
	if err := hits.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err), zap.String("index", cfg.Index.Name))
	}

	opts := []sessionuc.Option{
		sessionuc.WithIndexer(hits),
		sessionuc.WithRenderer(render.New(render.WithCacheSize(cfg.Table.TemplateCache))),
		sessionuc.WithLogger(logger),
	}

	// Publisher options are only added when connected: a typed nil
	// *Publisher would pass the != nil checks downstream.
	var healthOpts []healthuc.Option
	if cfg.NATS.URL != "" {
		publisher, err := natsTransport.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, natsTransport.Options{Logger: logger})
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		opts = append(opts, sessionuc.WithPublisher(publisher))
		healthOpts = append(healthOpts, healthuc.WithPublisher(publisher))
		logger.Info("Sort intent publishing enabled", zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
	}

	sessions := sessionuc.New(hits, dashboards, sessionuc.Config{
		DefaultPageSize: cfg.Table.DefaultPageSize,
		MaxPageSize:     cfg.Table.MaxPageSize,
		TTL:             time.Duration(cfg.Table.SessionTTLSec) * time.Second,
		MaxSessions:     cfg.Table.MaxSessions,
	}, opts...)

	healthOpts = append(healthOpts, healthuc.WithSessions(sessions))
	healthSvc := healthuc.New(store, healthOpts...)

	server := chiTransport.NewServer(sessions, healthSvc, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           newRouter(server, logger),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		logger.Error("HTTP server error", zap.Error(err))
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped", zap.Int("open_sessions", sessions.Len()))
}

// newRouter mounts the API behind recovery, request id, request logging and
// metrics middleware, outermost first.
func newRouter(server *chiTransport.Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)
	return r
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
