package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/d-nishikido/organization-survey-tool/client"
)

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Inspect and export survey results",
	}
	cmd.AddCommand(newAnalyticsSummaryCmd(opts), newAnalyticsExportCmd(opts))
	return cmd
}

func newAnalyticsSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <survey-id>",
		Short: "Show aggregate results and category scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				sum, err := c.SurveySummary(ctx, args[0])
				if err != nil {
					return err
				}
				scores, err := c.CategoryScores(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]any{"summary": sum, "categories": scores})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d/%d responses (%.1f%%), average %.2f\n",
					sum.SurveyID, sum.TotalResponses, sum.TotalParticipants, sum.ResponseRate*100, sum.AverageScore)
				tw := newTable(out)
				fmt.Fprintln(tw, "CATEGORY\tAVERAGE\tRESPONSES")
				for _, s := range scores {
					fmt.Fprintf(tw, "%s\t%.2f\t%d\n", s.CategoryName, s.AverageScore, s.ResponseCount)
				}
				return tw.Flush()
			})
		},
	}
}

func newAnalyticsExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <survey-id>",
		Short: "Export raw responses as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create %s: %w", output, err)
					}
					defer func() { _ = f.Close() }()
					w = f
				}
				return c.ExportResponses(ctx, args[0], w)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	return cmd
}
