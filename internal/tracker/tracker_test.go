package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"salestracker/internal/catalog"
	"salestracker/internal/docsource"
	"salestracker/internal/notify"
	"salestracker/internal/pagefetch"
	"salestracker/internal/telemetry"
	"salestracker/internal/wishlist"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeDocuments struct {
	elements []wishlist.Element
	err      error
}

func (f fakeDocuments) Fetch(_ context.Context, _ string) ([]wishlist.Element, error) {
	return f.elements, f.err
}

type fakePages map[string]string

func (f fakePages) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	page, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pagefetch.ErrPageUnavailable, url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("message-%d", len(f.sent)), nil
}

func document(wishes ...string) []wishlist.Element {
	elements := []wishlist.Element{
		wishlist.SectionBreak{},
		wishlist.Text(wishlist.StyleHeading1, "To Play\n"),
	}
	for _, w := range wishes {
		elements = append(elements, wishlist.Text("NORMAL_TEXT", w+"\n"))
	}
	return append(elements,
		wishlist.Text("NORMAL_TEXT", "\n"),
		wishlist.Text(wishlist.StyleHeading1, "Played\n"),
		wishlist.Text("NORMAL_TEXT", "Halo\n"),
	)
}

const (
	indexUrl   = "https://www.example.com/news"
	listingUrl = "https://www.example.com/news/sale-round-up-1"
)

func pages() fakePages {
	return fakePages{
		indexUrl: `<a class="title" href="/news/sale-round-up-1">Weekend Sale Round-Up</a>`,
		listingUrl: `
			<h3>Top Deals</h3>
			<table><tbody>
				<tr>
					<td><a href="/g/1">Portal 2: Deluxe Edition</a></td>
					<td class="price"><a href="/buy/1"><span class="price">£4.99</span></a></td>
				</tr>
				<tr>
					<td><a href="/g/2">Portal</a></td>
					<td class="price"><a href="/buy/2"><span class="price">£2.99</span></a></td>
				</tr>
				<tr>
					<td><a href="/g/3">Tom Clancy's The Division™</a></td>
					<td class="price"><a href="/buy/3"><span class="price">£39.99</span></a></td>
				</tr>
			</tbody></table>
			<h3>Indies</h3>
			<table><tbody>
				<tr>
					<td><a href="/g/4">Hollow Knight</a></td>
					<td class="price"><a href="/buy/4"><span class="price">£7.49</span></a></td>
				</tr>
			</tbody></table>`,
	}
}

func options() Options {
	return Options{
		DocumentId:   "doc",
		StartHeading: 0,
		EndHeading:   1,
		IndexUrl:     indexUrl,
		LinkPrefix:   "https://www.example.com",
		Sections:     []string{"Top Deals", "Indies"},
		Notify: notify.ComposeOptions{
			From: "me@example.com",
			To:   []string{"me@example.com"},
		},
	}
}

func TestRun(t *testing.T) {
	notifier := &fakeNotifier{}
	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document("Portal 2 (NYA)", "Tom Clancy’s The Division", "Celeste")},
		Pages:     pages(),
		Notifier:  notifier,
	}, options(), telemetry.NewRecorder())
	require.NoError(t, err)

	require.Equal(t, []string{"Portal 2", "Tom Clancy’s The Division", "Celeste"}, result.Wishlist)
	require.Equal(t, listingUrl, result.Listing)
	require.Len(t, result.Catalog, 4)

	expected := []catalog.SaleRecord{
		{Title: "Portal 2: Deluxe Edition", Price: "£4.99", Link: "https://www.example.com/buy/1"},
		{Title: "Tom Clancy's The Division™", Price: "£39.99", Link: "https://www.example.com/buy/3"},
	}
	if diff := cmp.Diff(expected, result.Matches); diff != "" {
		t.Fatal("unexpected matches (-want +got)\n", diff)
	}

	require.Equal(t, "message-1", result.NotificationId)
	require.NoError(t, result.NotifyErr)
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0].Text, "https://www.example.com/buy/1")
	require.Contains(t, notifier.sent[0].Text, listingUrl)
}

func TestRunBudget(t *testing.T) {
	opts := options()
	opts.MaxPrice = 10

	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document("Portal 2", "Tom Clancy's The Division")},
		Pages:     pages(),
	}, opts, telemetry.NewRecorder())
	require.NoError(t, err)
	require.Len(t, result.Catalog, 4)
	require.Len(t, result.Matches, 1)
	require.Equal(t, "Portal 2: Deluxe Edition", result.Matches[0].Title)
}

func TestRunNearMisses(t *testing.T) {
	opts := options()
	opts.NearMissThreshold = 0.8

	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document("Hollow Knigth")},
		Pages:     pages(),
	}, opts, telemetry.NewRecorder())
	require.NoError(t, err)
	require.Empty(t, result.Matches)
	require.Len(t, result.NearMisses, 1)
	require.Equal(t, "Hollow Knight", result.NearMisses[0].Record.Title)
}

func TestRunEmptySides(t *testing.T) {
	notifier := &fakeNotifier{}

	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document()},
		Pages:     pages(),
		Notifier:  notifier,
	}, options(), telemetry.NewRecorder())
	require.NoError(t, err)
	require.Empty(t, result.Wishlist)
	require.Empty(t, result.Matches)
	require.Empty(t, notifier.sent)

	emptyListing := pages()
	emptyListing[listingUrl] = `<h3>Top Deals</h3><table><tbody></tbody></table>`
	result, err = Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document("Portal 2")},
		Pages:     emptyListing,
		Notifier:  notifier,
	}, options(), telemetry.NewRecorder())
	require.NoError(t, err)
	require.Empty(t, result.Catalog)
	require.Empty(t, result.Matches)
	require.Empty(t, notifier.sent)
}

func TestRunNotifyFailureDoesNotAbort(t *testing.T) {
	recorder := telemetry.NewRecorder()
	notifier := &fakeNotifier{err: errors.New("smtp down")}

	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: document("Portal 2")},
		Pages:     pages(),
		Notifier:  notifier,
	}, options(), recorder)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Empty(t, result.NotificationId)
	require.EqualError(t, result.NotifyErr, "smtp down")
	require.Len(t, recorder.Reports("broken"), 1)
}

func TestRunErrors(t *testing.T) {
	noListing := pages()
	noListing[indexUrl] = `<a class="title" href="/news/review">A Review</a>`

	listingDown := pages()
	delete(listingDown, listingUrl)

	testCases := []struct {
		name          string
		collaborators Collaborators
		expected      error
	}{
		{
			name: "document unavailable",
			collaborators: Collaborators{
				Documents: fakeDocuments{err: fmt.Errorf("%w: boom", docsource.ErrDocumentUnavailable)},
				Pages:     pages(),
			},
			expected: docsource.ErrDocumentUnavailable,
		},
		{
			name: "malformed document",
			collaborators: Collaborators{
				Documents: fakeDocuments{elements: []wishlist.Element{wishlist.Text(wishlist.StyleHeading1, "To Play\n")}},
				Pages:     pages(),
			},
			expected: wishlist.ErrMalformedDocument,
		},
		{
			name: "index page unavailable",
			collaborators: Collaborators{
				Documents: fakeDocuments{elements: document("Portal 2")},
				Pages:     fakePages{},
			},
			expected: pagefetch.ErrPageUnavailable,
		},
		{
			name: "listing not found",
			collaborators: Collaborators{
				Documents: fakeDocuments{elements: document("Portal 2")},
				Pages:     noListing,
			},
			expected: catalog.ErrListingNotFound,
		},
		{
			name: "listing page unavailable",
			collaborators: Collaborators{
				Documents: fakeDocuments{elements: document("Portal 2")},
				Pages:     listingDown,
			},
			expected: pagefetch.ErrPageUnavailable,
		},
	}

	for _, test := range testCases {
		notifier := &fakeNotifier{}
		test.collaborators.Notifier = notifier

		result, err := Run(context.Background(), test.collaborators, options(), telemetry.NewRecorder())
		require.ErrorIs(t, err, test.expected, test.name)
		require.Equal(t, Result{}, result, test.name)
		require.Empty(t, notifier.sent, test.name)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	require.Panics(t, func() {
		New(Collaborators{Pages: pages()}, options(), telemetry.NewRecorder())
	})
}

func TestRunSplitHeadingWarns(t *testing.T) {
	recorder := telemetry.NewRecorder()
	elements := []wishlist.Element{
		wishlist.Paragraph{
			Style: wishlist.StyleHeading1,
			Elements: []wishlist.InlineElement{
				{TextRun: &wishlist.TextRun{Content: "To "}},
				{TextRun: &wishlist.TextRun{Content: "Play\n"}},
			},
		},
		wishlist.Text("NORMAL_TEXT", "Portal 2\n"),
		wishlist.Text(wishlist.StyleHeading1, "Played\n"),
	}

	result, err := Run(context.Background(), Collaborators{
		Documents: fakeDocuments{elements: elements},
		Pages:     pages(),
	}, options(), recorder)
	require.NoError(t, err)
	require.Empty(t, result.Wishlist)
	require.Empty(t, result.Matches)

	warnings := recorder.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "tracker:tracker.wishlist", warnings[0].Id)
}
