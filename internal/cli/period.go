package cli

import (
	"fmt"
	"io"
	"time"

	"habitgrid/internal/period"

	"github.com/spf13/cobra"
)

func NewPeriodCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "period <daily|weekly|monthly>",
		Short: "Print the period key for a cadence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := period.ParseCadence(args[0])
			if err != nil {
				return err
			}

			now := time.Now().Local()
			if at != "" {
				now, err = time.ParseInLocation(period.KeyLayout, at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at date %q: %w", at, err)
				}
			}

			key := period.Key(c, now)
			out := map[string]string{"cadence": string(c), "period_key": key}
			return rootOpts.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, key)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate at this local date (YYYY-MM-DD) instead of now")
	return cmd
}
