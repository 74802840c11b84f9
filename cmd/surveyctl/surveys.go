package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d-nishikido/organization-survey-tool/client"
)

func newSurveysCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "List surveys and control their lifecycle",
	}
	cmd.AddCommand(
		newSurveysListCmd(opts),
		newSurveyOperationCmd(opts, client.OpStart, "Start a draft or paused survey"),
		newSurveyOperationCmd(opts, client.OpPause, "Pause an active survey"),
		newSurveyOperationCmd(opts, client.OpStop, "Close an active or paused survey"),
		newSurveysStatusCmd(opts),
	)
	return cmd
}

func newSurveysListCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List surveys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				surveys, err := c.Surveys().List(ctx, client.SurveyStatus(status))
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), surveys)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tSTATUS\tSTART\tEND\tTITLE")
				for _, s := range surveys {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Status,
						s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), s.Title)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter: draft, active, paused or closed")
	return cmd
}

func newSurveyOperationCmd(opts *rootOptions, op client.Operation, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(op) + " <survey-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				// Prime the cache so forbidden transitions are caught locally.
				if _, err := c.Surveys().List(ctx, ""); err != nil {
					return err
				}
				var (
					st  *client.OperationStatus
					err error
				)
				switch op {
				case client.OpStart:
					st, err = c.Surveys().Start(ctx, args[0])
				case client.OpPause:
					st, err = c.Surveys().Pause(ctx, args[0])
				default:
					st, err = c.Surveys().Stop(ctx, args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Survey %s is now %s\n", args[0], st.Status)
				return nil
			})
		},
	}
}

func newSurveysStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <survey-id>",
		Short: "Show live participation of a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				st, err := c.Surveys().Status(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), st)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d/%d responses (%.1f%%)\n",
					st.SurveyID, st.Status, st.ResponseCount, st.ParticipantCount, st.ResponseRate()*100)
				return nil
			})
		},
	}
}
