// Package tracker runs the whole sale tracking pipeline once: it reads the
// wish list, scrapes the latest sale round-up, matches the two and notifies
// the user of the matches.
package tracker

import (
	"context"
	"fmt"

	"salestracker/internal/assert"
	"salestracker/internal/catalog"
	"salestracker/internal/docsource"
	"salestracker/internal/matcher"
	"salestracker/internal/notify"
	"salestracker/internal/pagefetch"
	"salestracker/internal/telemetry"
	"salestracker/internal/wishlist"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("salestracker.tracker")

const (
	report_tracker_wishlist = "tracker.wishlist"
	report_tracker_catalog  = "tracker.catalog"
	report_tracker_notify   = "tracker.notify"
)

// Collaborators are the external services a run depends on.
type Collaborators struct {
	Documents docsource.Source
	Pages     pagefetch.Fetcher
	// Notifier may be nil, in which case nothing is sent.
	Notifier notify.Notifier
}

type Options struct {
	DocumentId string
	// the wish list is found between these two top-level headings (0-based)
	StartHeading int
	EndHeading   int

	IndexUrl   string
	LinkPrefix string
	Sections   []string
	Selectors  catalog.Selectors
	// MaxPrice drops sale records more expensive than it, 0 means no budget.
	MaxPrice float64

	// NearMissThreshold is the minimum similarity of a near miss, 0 disables them.
	NearMissThreshold float64

	Notify notify.ComposeOptions
}

type Result struct {
	Wishlist   []string
	Listing    string
	Catalog    []catalog.SaleRecord
	Matches    []catalog.SaleRecord
	NearMisses []matcher.NearMiss

	// NotificationId is the delivery confirmation of the notification, empty if none was sent.
	NotificationId string
	// NotifyErr is set if the notification failed, a failed notification does not fail the run.
	NotifyErr error
}

// Tracker holds what a run needs, it keeps no state between runs.
type Tracker struct {
	collaborators Collaborators
	extractor     catalog.Extractor
	options       Options
	tel           telemetry.API
}

func New(collaborators Collaborators, options Options, tel telemetry.API) Tracker {
	assert.NotNil(collaborators.Documents, "document source")
	assert.NotNil(collaborators.Pages, "page fetcher")
	assert.NotNil(tel, "telemetry")
	assert.NotEmptyStr(options.IndexUrl, "index url")

	return Tracker{
		collaborators: collaborators,
		extractor:     catalog.NewExtractor(options.Selectors, tel),
		options:       options,
		tel:           telemetry.NewScopedAPI("tracker", tel),
	}
}

// Wishlist retrieves the wish list document and extracts its titles.
func (t Tracker) Wishlist(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Wishlist")
	defer span.End()

	elements, err := t.collaborators.Documents.Fetch(ctx, t.options.DocumentId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch document")
		return nil, fmt.Errorf("fetch wish list: %w", err)
	}

	titles, err := wishlist.ExtractSection(elements, t.options.StartHeading, t.options.EndHeading)
	if err != nil {
		t.tel.ReportBroken(report_tracker_wishlist, err, t.options.DocumentId)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract wish list")
		return nil, fmt.Errorf("extract wish list: %w", err)
	}

	if len(titles) == 0 {
		// headings split into several runs produce adjacent markers and an empty section
		t.tel.ReportWarning(
			report_tracker_wishlist,
			"wish list section is empty",
			t.options.DocumentId,
			t.options.StartHeading,
			t.options.EndHeading,
		)
	}

	span.SetAttributes(attribute.Int("titles", len(titles)))
	t.tel.ReportCount("wishlist.titles", int64(len(titles)))
	return titles, nil
}

// Catalog locates the latest sale round-up and extracts the records of every
// wanted section, the url of the round-up is returned along with them.
func (t Tracker) Catalog(ctx context.Context) (string, []catalog.SaleRecord, error) {
	ctx, span := tracer.Start(ctx, "Catalog")
	defer span.End()

	index, err := t.collaborators.Pages.Fetch(ctx, t.options.IndexUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch index page")
		return "", nil, fmt.Errorf("fetch index page: %w", err)
	}

	listingUrl, err := t.extractor.LocateLatestListing(index, t.options.LinkPrefix)
	if err != nil {
		t.tel.ReportBroken(report_tracker_catalog, err, t.options.IndexUrl)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate listing")
		return "", nil, fmt.Errorf("locate listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing", listingUrl))

	listing, err := t.collaborators.Pages.Fetch(ctx, listingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return "", nil, fmt.Errorf("fetch listing: %w", err)
	}

	records := t.extractor.ExtractSections(listing, t.options.Sections, t.options.LinkPrefix)
	span.SetAttributes(attribute.Int("records", len(records)))
	t.tel.ReportCount("catalog.records", int64(len(records)))
	return listingUrl, records, nil
}

// Run executes the pipeline once. Any failure to read the wish list or the
// catalog aborts the run, a failure to notify is only recorded in the result.
func (t Tracker) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	titles, err := t.Wishlist(ctx)
	if err != nil {
		return Result{}, err
	}

	listingUrl, records, err := t.Catalog(ctx)
	if err != nil {
		return Result{}, err
	}

	candidates := catalog.FilterByBudget(records, t.options.MaxPrice)
	result := Result{
		Wishlist:   titles,
		Listing:    listingUrl,
		Catalog:    records,
		Matches:    matcher.Match(titles, candidates),
		NearMisses: matcher.NearMisses(titles, candidates, t.options.NearMissThreshold),
	}
	span.SetAttributes(attribute.Int("matches", len(result.Matches)))
	t.tel.ReportCount("matches", int64(len(result.Matches)))

	result.NotificationId, result.NotifyErr = t.notify(ctx, result)
	return result, nil
}

func (t Tracker) notify(ctx context.Context, result Result) (string, error) {
	if t.collaborators.Notifier == nil {
		return "", nil
	}
	if len(result.Matches) == 0 && len(result.NearMisses) == 0 {
		t.tel.ReportDebug("nothing to notify")
		return "", nil
	}

	ctx, span := tracer.Start(ctx, "Notify")
	defer span.End()

	options := t.options.Notify
	options.Listing = result.Listing
	msg, err := notify.Compose(options, result.Matches, result.NearMisses)
	if err != nil {
		t.tel.ReportBroken(report_tracker_notify, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compose notification")
		return "", err
	}

	id, err := t.collaborators.Notifier.Send(ctx, msg)
	if err != nil {
		t.tel.ReportBroken(report_tracker_notify, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send notification")
		return "", err
	}
	return id, nil
}

// Run is a shorthand for New(collaborators, options, tel).Run(ctx).
func Run(ctx context.Context, collaborators Collaborators, options Options, tel telemetry.API) (Result, error) {
	return New(collaborators, options, tel).Run(ctx)
}
