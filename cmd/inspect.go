package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"riskgate/artifacts"
)

type inspectReport struct {
	artifacts.Summary
	Warnings []string `json:"warnings,omitempty"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the configured artifacts and describe them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tables, err := loadTables(cfg)
			if err != nil {
				return err
			}
			if err := tables.Validate(); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(inspectReport{Summary: tables.Summary(), Warnings: tables.Warnings()})
		},
	}
}
