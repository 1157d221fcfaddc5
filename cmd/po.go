package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var poCmd = &cobra.Command{
	Use:   "po",
	Short: "Inspect the purchase order reference data",
}

var poListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded purchase orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := initRegistry()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(registry.All(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var poIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the similarity index and report its size",
	Long:  "Embeds every purchase order with the configured provider. Useful as a connectivity check before a batch run when search.provider is ollama.",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := initRegistry()
		if err != nil {
			return err
		}

		index, err := initIndex(cmd.Context(), registry)
		if err != nil {
			return err
		}

		zap.L().Info("index ready", zap.Int("documents", index.Len()))
		fmt.Printf("indexed %d purchase orders\n", index.Len())
		return nil
	},
}

func init() {
	poCmd.AddCommand(poListCmd)
	poCmd.AddCommand(poIndexCmd)
	rootCmd.AddCommand(poCmd)
}
