package catalog

// SaleRecord is a discounted item listed in a sale round-up.
type SaleRecord struct {
	Title string `json:"title"`
	// Price is kept exactly as the retailer formats it.
	Price string `json:"price"`
	// Link is the absolute url the item can be bought at.
	Link string `json:"link"`
}

// Selectors are the CSS selectors used to navigate sale round-up pages.
type Selectors struct {
	// ArticleLink matches the article links of the index page.
	ArticleLink string `json:"article_link"`
	// SectionHeading matches the headings that title each section of a listing.
	SectionHeading string `json:"section_heading"`
	// Row matches the rows of a section's table, relative to the element after its heading.
	Row string `json:"row"`
	// TitleCell matches the cells of a row, the first one holds the titles.
	TitleCell string `json:"title_cell"`
	// TitleLink matches the title links inside the title cell.
	TitleLink string `json:"title_link"`
	// PriceCell matches the cell of a row holding the price.
	PriceCell string `json:"price_cell"`
	// PurchaseLink matches the purchase links inside the price cell.
	PurchaseLink string `json:"purchase_link"`
	// PriceDisplay matches the element holding the price inside the purchase link.
	PriceDisplay string `json:"price_display"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		ArticleLink:    "a.title",
		SectionHeading: "h3",
		Row:            "tbody tr",
		TitleCell:      "td",
		TitleLink:      "a",
		PriceCell:      "td.price",
		PurchaseLink:   "a",
		PriceDisplay:   "span.price",
	}
}

// orDefault fills every empty selector with its default.
func (s Selectors) orDefault() Selectors {
	d := DefaultSelectors()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&s.ArticleLink, d.ArticleLink)
	fill(&s.SectionHeading, d.SectionHeading)
	fill(&s.Row, d.Row)
	fill(&s.TitleCell, d.TitleCell)
	fill(&s.TitleLink, d.TitleLink)
	fill(&s.PriceCell, d.PriceCell)
	fill(&s.PurchaseLink, d.PurchaseLink)
	fill(&s.PriceDisplay, d.PriceDisplay)
	return s
}
