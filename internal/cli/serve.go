package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl"
	"github.com/kailas-cloud/searchdsl/internal/cache"
	"github.com/kailas-cloud/searchdsl/internal/config"
	dbRedis "github.com/kailas-cloud/searchdsl/internal/db/redis"
	"github.com/kailas-cloud/searchdsl/internal/domain"
	logpkg "github.com/kailas-cloud/searchdsl/internal/logger"
	"github.com/kailas-cloud/searchdsl/internal/metrics"
	chiTransport "github.com/kailas-cloud/searchdsl/internal/transport/chi"
	"github.com/kailas-cloud/searchdsl/internal/transport/cluster"
	openaiEmb "github.com/kailas-cloud/searchdsl/internal/transport/openai"
	healthuc "github.com/kailas-cloud/searchdsl/internal/usecase/health"
	"github.com/kailas-cloud/searchdsl/internal/version"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API in front of an OpenSearch cluster. Configuration comes
from config/<env>.yaml, or from the file given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return WrapExitError(ExitUsage, "load config", err)
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			if rootOpts.MaxDepth > 0 {
				cfg.Decode.MaxDepth = rootOpts.MaxDepth
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts.logEnv(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides http.port)")
	return cmd
}

func loadConfig(opts *RootOptions) (config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFile(opts.ConfigPath)
	}
	return config.Load(opts.Env)
}

// logEnv picks the logger preset. An explicit config file keeps the
// --env preset when it is known and falls back to prod output otherwise.
func (o *RootOptions) logEnv() string {
	if slices.Contains(validEnvs, o.Env) {
		return o.Env
	}
	return "prod"
}

// app is the assembled server with the resources that need closing.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func runServe(ctx context.Context, env string, cfg config.Config) error {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return WrapExitError(ExitUsage, "create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchdsl API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cluster_addrs", cfg.Cluster.Addrs),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("embedding", cfg.Embedding.Enabled()),
	)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "http server", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return WrapExitError(ExitFailure, "shutdown", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// buildApp is the composition root: cluster transport, optional response
// cache, optional embedder, SDK client, health service and router.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()
	a := &app{}

	clusterClient, err := cluster.New(cluster.Config{
		Addrs:      cfg.Cluster.Addrs,
		Username:   cfg.Cluster.Username,
		Password:   cfg.Cluster.Password,
		Timeout:    time.Duration(cfg.Cluster.RequestTimeoutSec) * time.Second,
		MaxRetries: cfg.Cluster.MaxRetries,
		Backoff:    time.Duration(cfg.Cluster.RetryBackoffMs) * time.Millisecond,
		Logger:     logger,
	})
	if err != nil {
		return nil, WrapExitError(ExitUsage, "create cluster client", err)
	}
	var transport searchdsl.Transport = clusterClient

	// Pass nil interfaces (not typed nil pointers) for components that are
	// switched off: a (*Store)(nil) in a Pinger is not == nil.
	var cachePinger healthuc.Pinger
	var embeddingCache *dbRedis.Store
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, WrapExitError(ExitFailure, "create cache store", err)
		}
		a.closers = append(a.closers, store.Close)

		readiness := time.Duration(cfg.Cache.ReadinessTimeoutSec) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			a.close()
			return nil, WrapExitError(ExitFailure, "cache not ready", err)
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		transport = cache.New(transport, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			cfg.Cache.KeyPrefix, metrics.CacheTotal, logger)
		cachePinger = store
		embeddingCache = store
	}

	opts := []searchdsl.Option{
		searchdsl.WithMaxDepth(cfg.Decode.MaxDepth),
		searchdsl.WithLogger(logger),
		searchdsl.WithPrometheus(prometheus.DefaultRegisterer),
	}
	if cfg.Cluster.TypedKeys {
		opts = append(opts, searchdsl.WithTypedKeys())
	}
	if cfg.Cluster.PartialAggregations {
		opts = append(opts, searchdsl.WithPartialAggregations())
	}

	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		embedder := buildEmbedder(cfg, embeddingCache, logger)
		opts = append(opts, searchdsl.WithEmbedder(embedder))
		embeddingChecker = embedder
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	client, err := searchdsl.New(transport, opts...)
	if err != nil {
		a.close()
		return nil, WrapExitError(ExitFailure, "create searchdsl client", err)
	}

	healthSvc := healthuc.New(clusterClient, cachePinger, embeddingChecker)
	server := chiTransport.NewServer(client, healthSvc, logger).
		WithMaxDepth(cfg.Decode.MaxDepth).
		WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes))
	a.handler = chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)
	return a, nil
}

// healthEmbedder is an embedder that can also report its own health.
type healthEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: provider -> cached ->
// instruction prefix. The instruction is outermost so it is part of the
// cache key. store may be nil.
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) healthEmbedder {
	emb := cfg.Embedding
	var embedder healthEmbedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		Dimensions: emb.Dimensions,
		Provider:   emb.Provider,
		Logger:     logger,
	})
	if store != nil {
		embedder = cache.NewEmbedder(embedder, store,
			time.Duration(cfg.Cache.EmbeddingTTLSec)*time.Second,
			cfg.Cache.KeyPrefix, emb.Model, metrics.EmbeddingCacheTotal, logger)
	}
	if emb.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, emb.QueryInstruction)
	}
	return embedder
}
