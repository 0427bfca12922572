package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subweave/internal/config"
	"subweave/internal/preflight"
	"subweave/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check environment readiness and queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Environment", colorize) {
					fmt.Fprintln(out, line)
				}
				results := preflight.RunAll(cmd.Context(), cfg)
				for _, result := range results {
					kind := statusError
					if result.Passed {
						kind = statusOK
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				for _, count := range stats {
					total += count
				}
				if total == 0 {
					fmt.Fprintln(out, renderStatusLine("Items", statusInfo, "queue is empty", colorize))
				} else {
					for _, status := range queue.AllStatuses() {
						count, ok := stats[status]
						if !ok {
							continue
						}
						kind := statusInfo
						switch status {
						case queue.StatusCompleted:
							kind = statusOK
						case queue.StatusFailed:
							kind = statusError
						}
						fmt.Fprintln(out, renderStatusLine(string(status), kind, fmt.Sprintf("%d", count), colorize))
					}
				}

				if !preflight.AllPassed(results) {
					return fmt.Errorf("one or more preflight checks failed")
				}
				return nil
			})
		},
	}
}
