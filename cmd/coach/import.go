package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fragmentrepo "github.com/kailas-cloud/coach/internal/repository/fragment"
)

var importFlags struct {
	kb  string
	dir string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a knowledge base fragment file into the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := filepath.Join(importFlags.dir, cfg.Fragments.FileName)
		rows, err := fragmentrepo.ReadFile(path)
		if err != nil {
			return err
		}

		store, err := connectStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		im := fragmentrepo.NewImporter(store, cfg.Fragments.IndexPrefix, cfg.Fragments.KeyPrefix, logger)
		res, err := im.Import(cmd.Context(), importFlags.kb, rows)
		if err != nil {
			return fmt.Errorf("import %s: %w", importFlags.kb, err)
		}

		logger.Info("Knowledge base imported",
			zap.String("knowledge_base", importFlags.kb),
			zap.String("path", path),
			zap.String("index", res.Index),
			zap.Int("imported", res.Imported),
			zap.Int("removed", res.Removed),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fragments imported into %s (%d stale removed)\n",
			importFlags.kb, res.Imported, res.Index, res.Removed)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFlags.kb, "kb", "", "knowledge base name")
	importCmd.Flags().StringVar(&importFlags.dir, "dir", "", "directory holding the fragment file")
	_ = importCmd.MarkFlagRequired("kb")
	_ = importCmd.MarkFlagRequired("dir")
}
