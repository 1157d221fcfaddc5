package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/recon"
)

var batchDir string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Reconcile every unprocessed invoice in a directory",
	Long:  "Discovers invoice documents in the configured directory, skips files that already have a persisted result, and processes the rest concurrently. One invoice failing does not stop the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		dir := cfg.Batch.InvoiceDir
		if batchDir != "" {
			dir = batchDir
		}

		files, err := discoverInvoices(dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			zap.L().Info("no invoice documents found", zap.String("dir", dir))
			return nil
		}
		zap.L().Info("batch starting",
			zap.String("dir", dir),
			zap.Int("documents", len(files)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrentInvoices),
		)

		var processed, skipped, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		limit := cfg.Batch.MaxConcurrentInvoices
		if limit <= 0 {
			limit = 1
		}
		g.SetLimit(limit)

		for _, file := range files {
			file := file
			g.Go(func() error {
				if err := processOne(gctx, env, file, &skipped); err != nil {
					// Failures are isolated per invoice.
					failed.Add(1)
					zap.L().Error("invoice failed",
						zap.String("file", file),
						zap.Error(err),
					)
					return nil
				}
				processed.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int64("processed", processed.Load()-skipped.Load()),
			zap.Int64("skipped", skipped.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

// discoverInvoices lists the PDF documents in dir, sorted for a stable
// processing order.
func discoverInvoices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read invoice dir %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// processOne runs a single invoice and persists the result, skipping files
// that already have one.
func processOne(ctx context.Context, env *reconEnv, file string, skipped *atomic.Int64) error {
	done, err := env.Store.HasProcessed(ctx, filepath.Base(file))
	if err != nil {
		return err
	}
	if done {
		skipped.Add(1)
		zap.L().Info("already processed, skipping", zap.String("file", file))
		return nil
	}

	quality := resolveQuality("auto", file)
	state := env.Machine.Run(ctx, recon.Document{Path: file, Quality: quality})
	record := model.NewReconRecord(state)

	if _, err := env.Store.SaveRecord(ctx, record); err != nil {
		return err
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "invoice directory (defaults to batch.invoice_dir)")
	rootCmd.AddCommand(batchCmd)
}
