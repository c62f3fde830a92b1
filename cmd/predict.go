package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"riskgate/gateway"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict risk for one patient record",
		Long: `Predict risk for one patient record given either as field flags or as a JSON
object with --json ("-" reads it from stdin). Fields that are not given are
defaulted the same way the HTTP API defaults them.`,
		Example: `  riskgate predict --gender Female --age 54 --bmi 31.2 --HbA1c_level 6.8 --blood_glucose_level 160
  echo '{"age": 54, "bmi": null}' | riskgate predict --json -`,
		Args: cobra.NoArgs,
		RunE: runPredict,
	}
	for _, field := range gateway.FieldNames() {
		cmd.Flags().String(field, "", "Value for "+field)
	}
	cmd.Flags().String("json", "", `Record as a JSON object, or "-" for stdin`)
	cmd.MarkFlagsMutuallyExclusive(append([]string{"json"}, gateway.FieldNames()...)...)
	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	record, err := recordFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newCLILogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	_, predictor, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(predictor.Predict(record))
}

func recordFromFlags(cmd *cobra.Command) (gateway.Record, error) {
	var record gateway.Record

	if src, _ := cmd.Flags().GetString("json"); src != "" {
		data := []byte(src)
		if src == "-" {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return record, fmt.Errorf("read stdin: %w", err)
			}
		}
		record, err := gateway.DecodeRecord(data)
		if err != nil {
			return record, fmt.Errorf("parse record: %w", err)
		}
		return record, nil
	}

	for _, field := range gateway.FieldNames() {
		if !cmd.Flags().Changed(field) {
			continue
		}
		value, _ := cmd.Flags().GetString(field)
		if err := record.Set(field, gateway.Text(value)); err != nil {
			return record, err
		}
	}
	return record, nil
}
