package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coach/internal/domain/level"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

var contextFlags struct {
	kb    string
	level string
	topic string
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the assembled context of a knowledge base",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lvl, err := level.Parse(contextFlags.level)
		if err != nil {
			return err
		}

		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ac, err := a.retrieval.Context(cmd.Context(), retrieval.Request{
			KnowledgeBase: contextFlags.kb,
			Level:         string(lvl),
			Topic:         contextFlags.topic,
		})
		if err != nil {
			return err
		}
		if err := ac.Err(); err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), ac.Text)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d fragments, %d groups, strategy %s, cached %t\n",
			ac.TotalFragments, ac.GroupCount, ac.Strategy, ac.Cached)
		return nil
	},
}

func init() {
	contextCmd.Flags().StringVar(&contextFlags.kb, "kb", "", "knowledge base name")
	contextCmd.Flags().StringVar(&contextFlags.level, "level", string(level.Beginner), "training level")
	contextCmd.Flags().StringVar(&contextFlags.topic, "topic", "", "focus topic")
	_ = contextCmd.MarkFlagRequired("kb")
}
