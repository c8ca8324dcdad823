package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
	reciperepo "github.com/kailas-cloud/cookbook/internal/repository/recipe"
	ingestuc "github.com/kailas-cloud/cookbook/internal/usecase/ingest"
)

func newLoadCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "load <file.jsonl | ->",
		Short: "Embed and store recipes from a JSON Lines file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(filepath.Clean(args[0]))
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			store, err := a.connectStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			metrics.RegisterEmbeddingMetrics()
			metrics.RegisterSearchMetrics()

			if _, err := a.indexManager(store).Ensure(ctx); err != nil {
				return err
			}

			repo := reciperepo.New(store, a.cfg.Database.KeyPrefix, a.cfg.Index.Name, a.logger)
			svc := ingestuc.New(repo, a.buildEmbedder(domain.InputDocument, store), a.logger).
				WithWorkers(workers)

			report, err := svc.Load(ctx, in)
			if err != nil {
				a.logger.Error("Load aborted",
					zap.Int("loaded", report.Loaded), zap.Int("skipped", report.Skipped), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d recipes, skipped %d\n", report.Loaded, report.Skipped)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", ingestuc.DefaultWorkers, "concurrent embedding requests")
	return cmd
}
