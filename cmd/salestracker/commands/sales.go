package commands

import (
	"context"
	"fmt"

	"salestracker/internal/catalog"
	"salestracker/internal/tracker"

	"github.com/spf13/cobra"
)

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Prints every item of the wanted sections of the latest sale round-up.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s session) error {
			listing, records, err := tracker.New(s.collaborators, s.config.TrackerOptions(), s.tel).Catalog(ctx)
			if err != nil {
				return err
			}

			fmt.Println(listing)
			printRecords(catalog.FilterByBudget(records, s.config.Catalog.MaxPrice))
			return nil
		})
	},
}
