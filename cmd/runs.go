package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/store"
)

var (
	runsAction   string
	runsSupplier string
	runsLimit    int
	runsOffset   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted reconciliation results",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List results, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListRecords(ctx, store.Filter{
			Action:   model.Action(runsAction),
			Supplier: runsSupplier,
			Limit:    runsLimit,
			Offset:   runsOffset,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one result by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		record, err := st.GetRecord(ctx, args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var runsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate counts across all results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := st.Summarize(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsAction, "action", "", "filter by recommended action")
	runsListCmd.Flags().StringVar(&runsSupplier, "supplier", "", "filter by supplier")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "max results")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "results to skip")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsSummaryCmd)
	rootCmd.AddCommand(runsCmd)
}
