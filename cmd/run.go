package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/recon"
)

var (
	runFile    string
	runQuality string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a single invoice",
	Long:  "Runs one invoice through the full pipeline (extract, verify, match, discrepancy check, resolve) and persists the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		quality := resolveQuality(runQuality, runFile)
		state := env.Machine.Run(ctx, recon.Document{Path: runFile, Quality: quality})
		record := model.NewReconRecord(state)

		processed, err := env.Store.HasProcessed(ctx, record.SourceFile)
		if err != nil {
			return err
		}
		if processed {
			zap.L().Warn("result already persisted for this file, not saving again",
				zap.String("source_file", record.SourceFile))
		} else {
			id, err := env.Store.SaveRecord(ctx, record)
			if err != nil {
				return err
			}
			zap.L().Info("result saved", zap.String("id", id))
		}

		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFile, "file", "", "path to the invoice document (required)")
	runCmd.Flags().StringVar(&runQuality, "quality", "auto", "document quality: auto, clean, or degraded")
	_ = runCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(runCmd)
}
