package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coach/internal/usecase/warmup"
)

var warmKBs []string

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fill the grouping cache for configured knowledge bases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kbs := warmKBs
		if len(kbs) == 0 {
			kbs = cfg.KnowledgeBases.All()
		}

		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		s := warmup.New(a.retrieval, warmup.Config{KnowledgeBases: kbs}, logger)
		failed := 0
		for _, o := range s.RunAll(cmd.Context()) {
			if o.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", o.Err)
				continue
			}
			r := o.Result
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fragments, %d groups (%s, cached %t)\n",
				r.KnowledgeBase, r.Fragments, r.Groups, r.Strategy, r.Cached)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d knowledge bases failed to warm", failed, len(kbs))
		}
		return nil
	},
}

func init() {
	warmCmd.Flags().StringSliceVar(&warmKBs, "kb", nil, "knowledge bases to warm (default: all configured)")
}
