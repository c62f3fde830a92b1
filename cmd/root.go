// Package cmd implements the riskgate command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskgate/artifacts"
	"riskgate/config"
	"riskgate/db"
	"riskgate/gateway"
	"riskgate/logging"
)

const serviceName = "riskgate"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskgate",
		Short:         "Diabetes risk inference gateway",
		Long:          "riskgate serves a pre-trained type 2 diabetes risk classifier over HTTP and the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (overrides "+config.EnvPath+" env var)")
	root.PersistentFlags().String("artifacts", "", "Artifact directory (overrides ml.artifacts_dir)")
	root.PersistentFlags().String("bundle", "", "Artifact bundle file (overrides ml.bundle_path)")
	root.PersistentFlags().String("model-type", "", "Model type (overrides ml.model_type)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newBundleCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.ResolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("artifacts"); dir != "" {
		cfg.ML.ArtifactsDir = dir
		cfg.ML.BundlePath = ""
	}
	if bundle, _ := cmd.Flags().GetString("bundle"); bundle != "" {
		cfg.ML.BundlePath = bundle
		cfg.ML.ArtifactsDir = ""
	}
	if modelType, _ := cmd.Flags().GetString("model-type"); modelType != "" {
		cfg.ML.ModelType = modelType
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCLILogger logs to stderr so stdout stays machine readable.
func newCLILogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := cfg.Log
	logCfg.Output = "stderr"
	return logging.NewLogger(logCfg, serviceName)
}

// loadTables loads the artifacts from the bundle when one is configured,
// otherwise from the artifact directory.
func loadTables(cfg *config.Config) (*artifacts.Tables, error) {
	if cfg.ML.BundlePath != "" {
		tables, err := db.LoadBundle(cfg.ML.BundlePath)
		if err != nil {
			return nil, fmt.Errorf("load bundle %s: %w", cfg.ML.BundlePath, err)
		}
		return tables, nil
	}
	tables, err := artifacts.LoadDir(cfg.ML.ArtifactsDir, cfg.ML.ModelType)
	if err != nil {
		return nil, fmt.Errorf("load artifacts %s: %w", cfg.ML.ArtifactsDir, err)
	}
	return tables, nil
}

// newGateway loads the artifacts and wraps the gateway in an LRU cache when
// ml.cache_size is positive.
func newGateway(cfg *config.Config, logger *zap.Logger) (*gateway.Gateway, gateway.Predictor, error) {
	tables, err := loadTables(cfg)
	if err != nil {
		return nil, nil, err
	}
	g, err := gateway.New(tables, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ML.CacheSize <= 0 {
		return g, g, nil
	}
	cached, err := gateway.NewCachedPredictor(g, cfg.ML.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	return g, cached, nil
}
