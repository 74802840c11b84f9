package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d-nishikido/organization-survey-tool/client"
)

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage question categories",
	}
	cmd.AddCommand(
		newCategoriesListCmd(opts),
		newCategoriesCreateCmd(opts),
		newCategoriesUpdateCmd(opts),
		newCategoriesDeleteCmd(opts),
		newCategoriesReorderCmd(opts),
		newCategoriesToggleCmd(opts),
	)
	return cmd
}

func newCategoriesListCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				cats, err := c.Categories().List(ctx, client.CategoryFilter(status))
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), cats)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tORDER\tACTIVE\tNAME")
				for _, cat := range cats {
					fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", cat.ID, cat.DisplayOrder, cat.IsActive, cat.Name)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "Filter: all, active or inactive")
	return cmd
}

func newCategoriesCreateCmd(opts *rootOptions) *cobra.Command {
	var name, description string
	var order int
	var inactive bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				req := client.CreateCategoryRequest{Name: name, Description: description, DisplayOrder: order}
				if inactive {
					active := false
					req.IsActive = &active
				}
				cat, err := c.Categories().Create(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), cat)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category created: %s - %s\n", cat.ID, cat.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Category name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().IntVar(&order, "order", 0, "Display order")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the category inactive")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCategoriesUpdateCmd(opts *rootOptions) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateCategoryRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				cat, err := c.Categories().Update(ctx, args[0], req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category updated: %s - %s\n", cat.ID, cat.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newCategoriesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				if err := c.Categories().Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category deleted: %s\n", args[0])
				return nil
			})
		},
	}
}

func newCategoriesReorderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the display order of categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				if err := c.Categories().Reorder(ctx, args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d categories\n", len(args))
				return nil
			})
		},
	}
}

func newCategoriesToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *client.Client) error {
				cat, err := c.Categories().ToggleStatus(ctx, args[0])
				if err != nil {
					return err
				}
				state := "inactive"
				if cat.IsActive {
					state = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s is now %s\n", cat.ID, state)
				return nil
			})
		},
	}
}
