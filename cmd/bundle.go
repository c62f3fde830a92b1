package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"riskgate/db"
)

func newBundleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bundle <out.db>",
		Short: "Pack the artifact directory into a single sqlite bundle",
		Long: `Validates every artifact in the configured directory (see --artifacts) and
writes them to a sqlite bundle that serve, predict and batch accept via --bundle.
An existing bundle at the same path is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.ML.ArtifactsDir == "" {
				return fmt.Errorf("bundle needs an artifact directory, got bundle %s", cfg.ML.BundlePath)
			}
			if err := db.SaveBundle(args[0], cfg.ML.ArtifactsDir, cfg.ML.ModelType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s from %s)\n", args[0], cfg.ML.ModelType, cfg.ML.ArtifactsDir)
			return nil
		},
	}
}
