package catalog

import (
	"strings"
	"testing"

	"salestracker/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const linkPrefix = "https://www.example.com"

func parse(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

const indexPage = `
<html><body>
	<ul>
		<li><a class="title" href="/news/2026/10/new-console-revealed">New Console Revealed</a></li>
		<li><a class="other" href="/news/2026/10/sale-round-up-decoy">Sale Round-Up (sidebar)</a></li>
		<li><a class="title" href="/news/2026/10/eshop-sale-round-up-october">eShop SALE Round-Up: October Deals</a></li>
		<li><a class="title" href="/news/2026/09/eshop-sale-round-up-september">eShop Sale Round-Up: September</a></li>
	</ul>
</body></html>`

const listingPage = `
<html><body>
	<h2>Intro</h2>
	<h3>Top Deals</h3>
	<div class="table-wrapper">
		<table>
			<thead><tr><th>Game</th><th>Price</th></tr></thead>
			<tbody>
				<tr>
					<td><a href="/games/hades">Hades</a></td>
					<td class="price"><a class="buy" href="/buy/hades"><span class="price">£9.99</span></a></td>
				</tr>
				<tr>
					<td><a href="/games/portal">Portal</a> + <a href="/games/portal-2">Portal 2</a></td>
					<td class="price"><a class="buy" href="/buy/portal-bundle"><span class="price">£4.49</span></a></td>
				</tr>
				<tr>
					<td><a href="/games/celeste">Celeste</a></td>
					<td class="price"><a class="buy" href="/buy/celeste">Expired</a></td>
				</tr>
			</tbody>
		</table>
	</div>
	<h3>Indie Picks</h3>
	<table>
		<tbody>
			<tr>
				<td><a href="/games/tunic">Tunic™</a></td>
				<td>notes</td>
				<td class="price"><a href="https://shop.example.com/tunic"><span class="price">$14.99</span></a></td>
			</tr>
		</tbody>
	</table>
	<h3>Not Wanted</h3>
	<table><tbody><tr>
		<td><a href="/games/x">X</a></td>
		<td class="price"><a href="/buy/x"><span class="price">£1.00</span></a></td>
	</tr></tbody></table>
	<h3>Top Deals</h3>
	<p>duplicate heading, ignored</p>
</body></html>`

func TestLocateLatestListing(t *testing.T) {
	link, err := LocateLatestListing(parse(t, indexPage), linkPrefix)
	require.NoError(t, err)
	require.Equal(t, "https://www.example.com/news/2026/10/eshop-sale-round-up-october", link)
}

func TestLocateLatestListingNotFound(t *testing.T) {
	_, err := LocateLatestListing(parse(t, `<a class="title" href="/news/1">Weekly Review</a>`), linkPrefix)
	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestSelectSections(t *testing.T) {
	listing := parse(t, listingPage)

	sections := SelectSections(listing, []string{"Indie Picks", "Top Deals", "Retro Corner"})
	require.Equal(t, []string{"Top Deals", "Indie Picks"}, sections)

	require.Empty(t, SelectSections(listing, []string{"Retro Corner"}))
	require.Empty(t, SelectSections(listing, nil))
}

func TestExtractRows(t *testing.T) {
	listing := parse(t, listingPage)

	records := ExtractRows(listing, "Top Deals", linkPrefix)
	expected := []SaleRecord{
		{Title: "Hades", Price: "£9.99", Link: "https://www.example.com/buy/hades"},
		{Title: "Portal", Price: "£4.49", Link: "https://www.example.com/buy/portal-bundle"},
		{Title: "Portal 2", Price: "£4.49", Link: "https://www.example.com/buy/portal-bundle"},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatal("unexpected records (-want +got)\n", diff)
	}
}

func TestExtractRowsSkipsRowsWithoutPrice(t *testing.T) {
	listing := parse(t, `
		<h3>Deals</h3>
		<table><tbody>
			<tr>
				<td><a href="/games/celeste">Celeste</a></td>
				<td class="price"><a href="/buy/celeste">Unavailable</a></td>
			</tr>
			<tr>
				<td><a href="/games/inside">Inside</a></td>
				<td class="price"></td>
			</tr>
		</tbody></table>`)

	require.Empty(t, ExtractRows(listing, "Deals", linkPrefix))
}

func TestExtractRowsBundleSharesPrice(t *testing.T) {
	listing := parse(t, listingPage)

	records := ExtractRows(listing, "Top Deals", linkPrefix)
	var bundle []SaleRecord
	for _, r := range records {
		if strings.HasPrefix(r.Title, "Portal") {
			bundle = append(bundle, r)
		}
	}
	require.Len(t, bundle, 2)
	require.Equal(t, bundle[0].Price, bundle[1].Price)
	require.Equal(t, bundle[0].Link, bundle[1].Link)
}

func TestExtractRowsMissingSection(t *testing.T) {
	recorder := telemetry.NewRecorder()
	extractor := NewExtractor(Selectors{}, recorder)

	records := extractor.ExtractRows(parse(t, listingPage), "Retro Corner", linkPrefix)
	require.Empty(t, records)
	require.Len(t, recorder.Reports("warning"), 1)
}

func TestExtractSections(t *testing.T) {
	extractor := NewExtractor(DefaultSelectors(), telemetry.NewRecorder())

	records := extractor.ExtractSections(parse(t, listingPage), []string{"Indie Picks", "Top Deals"}, linkPrefix)
	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}
	require.Equal(t, []string{"Hades", "Portal", "Portal 2", "Tunic™"}, titles)
	require.Equal(t, "https://shop.example.com/tunic", records[3].Link)
}

func TestCustomSelectors(t *testing.T) {
	extractor := NewExtractor(Selectors{
		SectionHeading: "h4",
		PriceCell:      "td.cost",
		PriceDisplay:   "b",
	}, telemetry.NewRecorder())

	listing := parse(t, `
		<h4>Deals</h4>
		<table><tbody><tr>
			<td><a href="/g">Gris</a></td>
			<td class="cost"><a href="/buy/gris"><b>€3,39</b></a></td>
		</tr></tbody></table>`)

	records := extractor.ExtractRows(listing, "Deals", linkPrefix)
	require.Equal(t, []SaleRecord{
		{Title: "Gris", Price: "€3,39", Link: "https://www.example.com/buy/gris"},
	}, records)
}

func TestExtractRowsPrefixWithPath(t *testing.T) {
	listing := parse(t, `
		<h3>Deals</h3>
		<table><tbody>
			<tr>
				<td><a href="/g/gris">Gris</a></td>
				<td class="price"><a href="/buy/gris"><span class="price">€3,39</span></a></td>
			</tr>
			<tr>
				<td><a href="/g/tunic">Tunic</a></td>
				<td class="price"><a href="buy/tunic"><span class="price">€14,99</span></a></td>
			</tr>
		</tbody></table>`)

	records := ExtractRows(listing, "Deals", "https://store.example.com/en-gb")
	expected := []SaleRecord{
		{Title: "Gris", Price: "€3,39", Link: "https://store.example.com/en-gb/buy/gris"},
		{Title: "Tunic", Price: "€14,99", Link: "https://store.example.com/en-gb/buy/tunic"},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatal("unexpected records (-want +got)\n", diff)
	}
}

func TestCustomTitleCell(t *testing.T) {
	extractor := NewExtractor(Selectors{TitleCell: "td.name"}, telemetry.NewRecorder())

	listing := parse(t, `
		<h3>Deals</h3>
		<table><tbody><tr>
			<td><a href="/rank">#1</a></td>
			<td class="name"><a href="/g">Gris</a></td>
			<td class="price"><a href="/buy/gris"><span class="price">€3,39</span></a></td>
		</tr></tbody></table>`)

	records := extractor.ExtractRows(listing, "Deals", linkPrefix)
	require.Equal(t, []SaleRecord{
		{Title: "Gris", Price: "€3,39", Link: "https://www.example.com/buy/gris"},
	}, records)
}
