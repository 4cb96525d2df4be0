package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/config"
	"github.com/sitegraph-io/sitegraph/internal/delivery"
	"github.com/sitegraph-io/sitegraph/internal/graph"
	logpkg "github.com/sitegraph-io/sitegraph/internal/logger"
	"github.com/sitegraph-io/sitegraph/internal/metrics"
	"github.com/sitegraph-io/sitegraph/internal/store"
	storeMemory "github.com/sitegraph-io/sitegraph/internal/store/memory"
	storeRedis "github.com/sitegraph-io/sitegraph/internal/store/redis"
	chiTransport "github.com/sitegraph-io/sitegraph/internal/transport/chi"
	"github.com/sitegraph-io/sitegraph/internal/version"
)

func main() {
	cmd := "build"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "build", "serve":
		// ok
	default:
		fmt.Fprintf(os.Stderr, "usage: sitegraph [build|serve]\n")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting sitegraph",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("command", cmd),
		zap.String("store_driver", cfg.Store.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := createStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create graph store", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	metrics.RegisterMaterializeMetrics()

	client, err := delivery.New(delivery.Config{
		Endpoint:  cfg.Delivery.Endpoint,
		ProjectID: cfg.Delivery.ProjectID,
		APIKey:    cfg.Delivery.APIKey,
		Timeout:   time.Duration(cfg.Delivery.TimeoutSec) * time.Second,
		Depth:     cfg.Delivery.Depth,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create delivery client", zap.Error(err))
	}

	materializer := graph.NewMaterializer(client, graph.Options{
		ReferencePolicy: cfg.Graph.ReferencePolicy,
		PathPrefix:      cfg.Graph.PathPrefix,
		Logger:          logger,
	})

	if err := materializer.Run(ctx, st); err != nil {
		logger.Fatal("materialization failed", zap.Error(err))
	}

	if cmd == "build" {
		return
	}

	server := chiTransport.NewServer(st, logger)
	addr := fmt.Sprintf(":%d", cfg.Serve.Port)
	err = server.ListenAndServe(ctx, addr,
		time.Duration(cfg.Serve.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.Serve.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.Serve.ShutdownSec)*time.Second,
	)
	if err != nil {
		logger.Fatal("preview server failed", zap.Error(err))
	}
}

func createStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return storeMemory.New(), nil
	case "redis":
		st, err := storeRedis.NewStore(storeRedis.Config{
			Addrs:     cfg.Store.Addrs,
			Password:  cfg.Store.Password,
			KeyPrefix: cfg.Store.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		timeout := time.Duration(cfg.Store.ReadinessTimeout) * time.Second
		if err := st.WaitForReady(ctx, timeout); err != nil {
			_ = st.Close()
			return nil, err
		}
		logger.Info("connected to redis store")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
