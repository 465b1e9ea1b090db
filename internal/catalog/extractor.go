// Package catalog extracts the discounted items listed in a retailer's sale round-up pages.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"salestracker/internal/htmlutil"
	"salestracker/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_extractor_locate_latest_listing = "extractor.locate-latest-listing"
	report_extractor_extract_rows          = "extractor.extract-rows"
)

// listingMarker identifies the title of a sale round-up article.
const listingMarker = "sale round-up"

// ErrListingNotFound is returned when an index page links to no sale round-up.
var ErrListingNotFound = errors.New("sale round-up listing not found")

// Extractor reads sale round-up pages using a set of selectors.
type Extractor struct {
	selectors Selectors
	tel       telemetry.API
}

// NewExtractor creates an Extractor, empty selectors fall back to DefaultSelectors.
func NewExtractor(selectors Selectors, tel telemetry.API) Extractor {
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	return Extractor{
		selectors: selectors.orDefault(),
		tel:       telemetry.NewScopedAPI("catalog", tel),
	}
}

// LocateLatestListing returns the absolute url of the first article linked
// from the index page whose text mentions a sale round-up.
func (e Extractor) LocateLatestListing(index *goquery.Document, linkPrefix string) (string, error) {
	for _, a := range htmlutil.GetAnchors(index.Find(e.selectors.ArticleLink)) {
		if !strings.Contains(strings.ToLower(a.Name), listingMarker) {
			continue
		}

		link, err := htmlutil.ResolveLink(linkPrefix, a.Href)
		if err != nil {
			e.tel.ReportBroken(
				report_extractor_locate_latest_listing,
				fmt.Errorf("resolve link: %w", err),
				a.Href,
			)
			return "", err
		}
		return link, nil
	}
	return "", ErrListingNotFound
}

// SelectSections returns the section headings of a listing that are also
// wanted, in the order they appear on the page. A section missing from the
// listing is not an error, not every round-up has every section.
func (e Extractor) SelectSections(listing *goquery.Document, wanted []string) []string {
	var sections []string
	listing.Find(e.selectors.SectionHeading).Each(func(_ int, h *goquery.Selection) {
		title := htmlutil.CleanText(h)
		if !slices.Contains(wanted, title) || slices.Contains(sections, title) {
			return
		}
		sections = append(sections, title)
	})
	return sections
}

func (e Extractor) findSection(listing *goquery.Document, sectionTitle string) *goquery.Selection {
	return listing.Find(e.selectors.SectionHeading).FilterFunction(func(_ int, h *goquery.Selection) bool {
		return htmlutil.CleanText(h) == sectionTitle
	}).First()
}

// ExtractRows returns the records listed in the table following the heading
// of the given section. Purchase links are appended to linkPrefix. Rows without a price are skipped, they are offers that
// are no longer available. A row listing several titles (a bundle) yields one
// record per title, all sharing the row's price and link.
func (e Extractor) ExtractRows(listing *goquery.Document, sectionTitle, linkPrefix string) []SaleRecord {
	heading := e.findSection(listing, sectionTitle)
	if heading.Length() == 0 {
		e.tel.ReportWarning(
			report_extractor_extract_rows,
			fmt.Errorf("section heading not found"),
			sectionTitle,
		)
		return nil
	}
	container := heading.Next()

	var records []SaleRecord
	skipped := 0
	container.Find(e.selectors.Row).Each(func(_ int, row *goquery.Selection) {
		var titles []string
		row.Find(e.selectors.TitleCell).First().Find(e.selectors.TitleLink).Each(func(_ int, a *goquery.Selection) {
			if title := htmlutil.CleanText(a); title != "" {
				titles = append(titles, title)
			}
		})

		purchase := row.Find(e.selectors.PriceCell).First().Find(e.selectors.PurchaseLink).First()
		priceDisplay := purchase.Find(e.selectors.PriceDisplay).First()
		if priceDisplay.Length() == 0 {
			skipped++
			return
		}
		price := htmlutil.CleanText(priceDisplay)

		href, _ := purchase.Attr("href")
		link, err := htmlutil.JoinLink(linkPrefix, strings.TrimSpace(href))
		if err != nil {
			e.tel.ReportBroken(
				report_extractor_extract_rows,
				fmt.Errorf("resolve purchase link: %w", err),
				href,
			)
			return
		}

		for _, title := range titles {
			records = append(records, SaleRecord{
				Title: title,
				Price: price,
				Link:  link,
			})
		}
	})

	e.tel.ReportDebug("extracted rows", sectionTitle, len(records), skipped)
	return records
}

// ExtractSections extracts the records of every wanted section present in the listing.
func (e Extractor) ExtractSections(listing *goquery.Document, wanted []string, linkPrefix string) []SaleRecord {
	var records []SaleRecord
	for _, section := range e.SelectSections(listing, wanted) {
		records = append(records, e.ExtractRows(listing, section, linkPrefix)...)
	}
	return records
}

var defaultExtractor = NewExtractor(DefaultSelectors(), nil)

// LocateLatestListing is Extractor.LocateLatestListing using DefaultSelectors.
func LocateLatestListing(index *goquery.Document, linkPrefix string) (string, error) {
	return defaultExtractor.LocateLatestListing(index, linkPrefix)
}

// SelectSections is Extractor.SelectSections using DefaultSelectors.
func SelectSections(listing *goquery.Document, wanted []string) []string {
	return defaultExtractor.SelectSections(listing, wanted)
}

// ExtractRows is Extractor.ExtractRows using DefaultSelectors.
func ExtractRows(listing *goquery.Document, sectionTitle, linkPrefix string) []SaleRecord {
	return defaultExtractor.ExtractRows(listing, sectionTitle, linkPrefix)
}
