package commands

import (
	"fmt"
	"os"

	"salestracker/internal/catalog"
	"salestracker/internal/matcher"
	"salestracker/internal/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printRecords(records []catalog.SaleRecord) {
	t := newTable()
	t.AppendHeader(table.Row{"Title", "Price", "Link"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Title, r.Price, r.Link})
	}
	t.AppendFooter(table.Row{"", "Total", len(records)})
	t.Render()
}

func printMatches(result tracker.Result) {
	if len(result.Matches) == 0 {
		fmt.Printf("None of the %d wish list items are in %s.\n", len(result.Wishlist), result.Listing)
		return
	}
	fmt.Printf("On sale in %s:\n", result.Listing)
	printRecords(result.Matches)
}

func printNearMisses(nearMisses []matcher.NearMiss) {
	fmt.Println("Similar titles:")

	t := newTable()
	t.AppendHeader(table.Row{"Wish", "Title", "Similarity", "Price", "Link"})
	for _, n := range nearMisses {
		t.AppendRow(table.Row{
			n.Wish,
			n.Record.Title,
			fmt.Sprintf("%.2f", n.Similarity),
			n.Record.Price,
			n.Record.Link,
		})
	}
	t.Render()
}
