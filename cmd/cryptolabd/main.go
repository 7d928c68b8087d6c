package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RowanDark/cryptolab/internal/api"
	"github.com/RowanDark/cryptolab/internal/config"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/observability/metrics"
	"github.com/RowanDark/cryptolab/internal/rpc"
	"github.com/RowanDark/cryptolab/internal/service"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a TOML or YAML config file (default ~/.cryptolab/config.toml, then ./cryptolab.yml)")
	logFile := flag.String("log-file", "", "optional path to append log lines to")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	opts := []logging.Option{}
	if *logFile != "" {
		opts = append(opts, logging.WithFile(*logFile))
	}
	logger, err := logging.New("cryptolabd", cfg.Log, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configure logging: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "cryptolabd exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	httpLis, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	var grpcLis net.Listener
	if cfg.GRPC.Enabled {
		grpcLis, err = net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}
	return serve(ctx, cfg, logger, httpLis, grpcLis)
}

// serve runs the HTTP API on httpLis and, when grpcLis is non-nil, the gRPC
// service alongside it. Both stop when ctx is cancelled or either fails.
func serve(ctx context.Context, cfg config.Config, logger *logging.Logger, httpLis, grpcLis net.Listener) error {
	var m *metrics.Metrics
	metricsPath := ""
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsPath = cfg.Metrics.Path
	}

	lab := service.New(service.Limits{
		MaxTextLength:  cfg.Limits.MaxTextLength,
		MaxPatternSpan: cfg.Limits.MaxPatternSpan,
	}, logger, m)

	apiServer, err := api.NewServer(api.Config{
		HTTP:        cfg.HTTP,
		MetricsPath: metricsPath,
		Lab:         lab,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("configure api: %w", err)
	}

	logger.Info(ctx, "starting cryptolabd",
		zap.String("version", version),
		zap.String("http_addr", httpLis.Addr().String()),
		zap.Bool("grpc_enabled", grpcLis != nil),
		zap.Bool("metrics_enabled", m != nil),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Serve(gctx, httpLis)
	})
	if grpcLis != nil {
		grpcServer := rpc.NewGRPCServer(lab, logger, m)
		g.Go(func() error {
			logger.Info(gctx, "grpc listening", zap.String("addr", grpcLis.Addr().String()))
			return rpc.Serve(gctx, grpcServer, grpcLis)
		})
	}

	err = g.Wait()
	logger.Info(context.Background(), "cryptolabd stopped")
	return err
}
