package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskgate/monitoring"
	"riskgate/pipeline"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file.csv|file.xlsx>",
		Short: "Predict risk for every record in a CSV or XLSX file",
		Long: `Reads patient records from a CSV or XLSX file whose header row uses the API
field names and writes one JSON line per record to stdout. Empty cells are
treated as missing fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newCLILogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			rows, err := pipeline.ReadFile(args[0])
			if err != nil {
				return err
			}
			logger.Info("records loaded", zap.String("file", args[0]), zap.Int("rows", len(rows)))

			_, predictor, err := newGateway(cfg, logger)
			if err != nil {
				return err
			}

			workers, _ := cmd.Flags().GetInt("workers")
			runner := pipeline.NewBatchRunner(pipeline.BatchConfig{Workers: workers}, predictor,
				monitoring.NewPredictionMetrics(monitoring.NewMetricsCollector()), logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err = runner.Run(ctx, rows, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().Int("workers", 4, "Concurrent prediction workers")
	return cmd
}
