package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/embdr/embdr-go/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the local submission history",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded submissions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, enabled, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if !enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}
			defer store.Close()

			var statuses []history.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				statuses = append(statuses, history.Status(trimmed))
			}
			submissions, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(submissions) == 0 {
				fmt.Fprintln(out, "No submissions recorded")
				return nil
			}

			rows := make([][]string, 0, len(submissions))
			for _, s := range submissions {
				rows = append(rows, []string{
					s.ID,
					string(s.Kind),
					truncate(s.Source, 48),
					s.ResourceID,
					string(s.Status),
					s.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Kind", "Source", "Resource", "Status", "Submitted"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show submissions with this status (pending, complete, failed)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, enabled, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if !enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d submission(s)\n", removed)
			return nil
		},
	}
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
