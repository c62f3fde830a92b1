package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskgate/artifacts"
	"riskgate/config"
	qhttp "riskgate/http"
	"riskgate/logging"
	"riskgate/monitoring"
)

const systemMetricsInterval = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Http.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (overrides http.port)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// 1. Logger
	logger, err := logging.NewLogger(cfg.Log, serviceName)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 2. Artifacts, loaded once
	g, predictor, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}
	summary := g.Tables().Summary()
	logger.Info("artifacts loaded",
		zap.String("model_type", summary.ModelType),
		zap.String("scaler", summary.ScalerKind),
		zap.String("artifacts_dir", cfg.ML.ArtifactsDir),
		zap.String("bundle", cfg.ML.BundlePath),
		zap.Int("cache_size", cfg.ML.CacheSize))

	collector := monitoring.NewMetricsCollector()
	metrics := monitoring.NewPredictionMetrics(collector)

	if cfg.ML.Watch && cfg.ML.ArtifactsDir != "" {
		err := artifacts.Watch(ctx, cfg.ML.ArtifactsDir, logger, func(name string) {
			collector.SetGauge("riskgate_artifacts_stale", 1, map[string]string{"file": name})
		})
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		}
	}
	go collectSystemMetrics(ctx, collector)

	// 3. HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, qhttp.NewHandler(predictor, summary, metrics, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 4. Graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("exiting")
	return nil
}

func collectSystemMetrics(ctx context.Context, collector *monitoring.MetricsCollector) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	collector.CollectSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collector.CollectSystemMetrics()
		}
	}
}
