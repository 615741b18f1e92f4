package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"habitgrid/internal/service/grid"
	"habitgrid/internal/service/progress"

	"github.com/spf13/cobra"
)

func NewGridCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		viewer string
		layout string
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Render the shared grid as seen by a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			agg := progress.NewAggregator(store.Logs(), log)
			g, err := grid.NewService(store.Habits(), store.Profiles(), agg, log).Load(cmd.Context(), viewer, grid.ParseLayout(layout))
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), g, func(w io.Writer) error {
				return renderGrid(w, g)
			})
		},
	}

	cmd.Flags().StringVar(&viewer, "user", "", "viewer user id")
	cmd.Flags().StringVar(&layout, "layout", string(grid.LayoutSquare), "square|fluid")
	return cmd
}

func renderGrid(w io.Writer, g *grid.Grid) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "layout: %s, columns: %d, empty: %d\n", g.Layout.Policy, g.Layout.Columns, g.Layout.EmptySlots)
	for _, t := range g.Tiles {
		if t.Placeholder {
			fmt.Fprintln(tw, "-\t\t\t\t")
			continue
		}
		mine := ""
		if t.CanLog {
			mine = "(you)"
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%d %s\t%s\t%s\n",
			t.HabitID, t.Name, mine, t.Total, t.CadenceLabel, t.Title, strings.TrimSpace(t.Progress))
	}
	return tw.Flush()
}
