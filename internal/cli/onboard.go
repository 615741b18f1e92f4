package cli

import (
	"fmt"
	"io"

	"habitgrid/internal/period"
	"habitgrid/internal/service/habit"

	"github.com/spf13/cobra"
)

func NewOnboardCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID  string
		req     habit.OnboardRequest
		cadence string
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Save a display name and create a public habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			req.Cadence = period.Cadence(cadence)
			h, err := habit.NewService(store.Habits(), store.Profiles(), log).Onboard(cmd.Context(), userID, req)
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), h, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created %s %q (%s)\n", h.ID, h.Title, h.Cadence)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&req.Title, "title", "", "habit title")
	cmd.Flags().StringVar(&req.Marker, "marker", "", "progress marker (emoji)")
	cmd.Flags().StringVar(&cadence, "cadence", string(period.Daily), "daily|weekly|monthly")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
