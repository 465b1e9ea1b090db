package commands

import (
	"context"

	"salestracker/internal/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Prints the titles extracted from the wish list document.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s session) error {
			titles, err := tracker.New(s.collaborators, s.config.TrackerOptions(), s.tel).Wishlist(ctx)
			if err != nil {
				return err
			}

			t := newTable()
			t.AppendHeader(table.Row{"#", "Title"})
			for i, title := range titles {
				t.AppendRow(table.Row{i + 1, title})
			}
			t.Render()
			return nil
		})
	},
}
