package cli

import (
	"fmt"
	"io"

	"habitgrid/internal/service/progress"

	"github.com/spf13/cobra"
)

func NewTotalsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <habit-id>...",
		Short: "Print total completions per habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			totals, err := progress.NewAggregator(store.Logs(), log).Totals(cmd.Context(), args)
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), totals, func(w io.Writer) error {
				for _, id := range args {
					if _, err := fmt.Fprintf(w, "%s\t%d\n", id, totals[id]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
