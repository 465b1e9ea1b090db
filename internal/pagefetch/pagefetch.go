// Package pagefetch retrieves web pages as queryable documents.
package pagefetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"salestracker/internal/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_http_fetch = "http.fetch"
	report_http_dump  = "http.dump"
)

// ErrPageUnavailable is returned when a page cannot be retrieved or parsed.
var ErrPageUnavailable = errors.New("page unavailable")

// Fetcher retrieves a page and parses it into a document that can be
// queried with CSS selectors.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	// RequestsPerSecond limits how fast pages are requested, defaults to 2.
	RequestsPerSecond float64
	// Timeout of a single request, defaults to 30 seconds.
	Timeout time.Duration
	// DumpDir, if set, is a directory every http exchange is written to.
	DumpDir string
}

// HTTP fetches pages over http.
type HTTP struct {
	http *resty.Client
	tel  telemetry.API
}

func NewHTTP(options Options, tel telemetry.API) HTTP {
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = 2
	}
	if options.Timeout <= 0 {
		options.Timeout = time.Second * 30
	}
	tel = telemetry.NewScopedAPI("pagefetch", tel)

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	client.SetTimeout(options.Timeout)

	// max burst >= requests per second just means that no requests will be dropped
	burst := int(options.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, tel)

	if options.DumpDir != "" {
		dump, err := telemetry.NewHttpDump(options.DumpDir)
		if err != nil {
			tel.ReportWarning(report_http_dump, err, options.DumpDir)
		} else {
			dump.Instrument(client)
		}
	}

	return HTTP{http: client, tel: tel}
}

func (h HTTP) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := h.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		h.tel.ReportBroken(report_http_fetch, fmt.Errorf("fetch: %w", err), url)
		return nil, fmt.Errorf("%w: %s: %w", ErrPageUnavailable, url, err)
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %s", res.Status())
		h.tel.ReportBroken(report_http_fetch, err, url)
		return nil, fmt.Errorf("%w: %s: %w", ErrPageUnavailable, url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		h.tel.ReportBroken(report_http_fetch, fmt.Errorf("parse html: %w", err), url)
		return nil, fmt.Errorf("%w: %s: %w", ErrPageUnavailable, url, err)
	}
	return doc, nil
}
