package cli

import (
	"fmt"
	"io"

	"habitgrid/internal/period"
	"habitgrid/internal/service/completion"
	"habitgrid/internal/service/progress"

	"github.com/spf13/cobra"
)

func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "log <habit-id>",
		Short: "Log a completion for the current period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			agg := progress.NewAggregator(store.Logs(), log)
			svc := completion.NewService(store.Habits(), store.Logs(), agg, period.SystemClock{}, nil, log)

			out, err := svc.Complete(cmd.Context(), userID, args[0], nil)
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return printOutcome(w, out)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (must own the habit)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// printOutcome 写入成功但 totals 刷新失败时不打印 total，避免显示成 0
func printOutcome(w io.Writer, out *completion.Outcome) error {
	if out.RefreshError != "" {
		_, err := fmt.Fprintf(w, "logged %s for %s (totals not refreshed: %s)\n", out.HabitID, out.PeriodKey, out.RefreshError)
		return err
	}
	_, err := fmt.Fprintf(w, "logged %s for %s (total %d)\n", out.HabitID, out.PeriodKey, out.Totals[out.HabitID])
	return err
}
