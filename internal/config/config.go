// Package config is the configuration of the salestracker command, read from
// config.json5 (and config.local.json5) in the working directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"salestracker/internal/catalog"
	"salestracker/internal/docsource"
	"salestracker/internal/notify"
	"salestracker/internal/pagefetch"
	"salestracker/internal/telemetry"
	"salestracker/internal/tracker"
)

const (
	SourceGoogle = "google"
	SourceDocx   = "docx"
)

type DocumentConfig struct {
	// google (default) or docx
	Source string `json:"source"`
	// the Google Docs document id, or the path to a .docx file
	Id string `json:"id"`
	// the wish list is found between these two top-level headings (0-based)
	StartHeading int                         `json:"start_heading"`
	EndHeading   int                         `json:"end_heading"`
	Google       docsource.GoogleCredentials `json:"google"`
}

type CatalogConfig struct {
	IndexUrl   string            `json:"index_url"`
	LinkPrefix string            `json:"link_prefix"`
	Sections   []string          `json:"sections"`
	Selectors  catalog.Selectors `json:"selectors"`
	// defaults to 2
	RequestsPerSecond float64 `json:"requests_per_second"`
	// 0 means no budget
	MaxPrice float64 `json:"max_price"`
	// if set, every http exchange made while scraping is written to this directory
	DumpDir string `json:"dump_dir"`
}

type NotifyConfig struct {
	Enabled bool              `json:"enabled"`
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Smtp    notify.SmtpConfig `json:"smtp"`
}

type Config struct {
	Document DocumentConfig `json:"document"`
	Catalog  CatalogConfig  `json:"catalog"`
	Notify   NotifyConfig   `json:"notify"`

	// the minimum Jaro-Winkler similarity of a suggested near miss, 0 disables them
	NearMissThreshold float64 `json:"near_miss_threshold"`
	// the maximum duration of a whole run, defaults to 300
	TimeoutSeconds int `json:"timeout_seconds"`

	Otlp telemetry.OtlpConfig `json:"otlp"`
}

// Validate checks that every required field is present and consistent.
func (c Config) Validate() error {
	var errs []error

	switch c.Document.Source {
	case "", SourceGoogle:
		creds := c.Document.Google
		if creds.AccessToken == "" && (creds.ClientId == "" || creds.ClientSecret == "" || creds.RefreshToken == "") {
			errs = append(errs, errors.New("document.google: either access_token or client_id, client_secret and refresh_token must be set"))
		}
	case SourceDocx:
	default:
		errs = append(errs, fmt.Errorf("document.source: unknown source '%s'", c.Document.Source))
	}
	if c.Document.Id == "" {
		errs = append(errs, errors.New("document.id is required"))
	}
	if c.Document.StartHeading < 0 || c.Document.EndHeading <= c.Document.StartHeading {
		errs = append(errs, fmt.Errorf(
			"document: end_heading (%d) must come after start_heading (%d)",
			c.Document.EndHeading, c.Document.StartHeading,
		))
	}

	if c.Catalog.IndexUrl == "" {
		errs = append(errs, errors.New("catalog.index_url is required"))
	}
	if c.Catalog.LinkPrefix == "" {
		errs = append(errs, errors.New("catalog.link_prefix is required"))
	}
	if len(c.Catalog.Sections) == 0 {
		errs = append(errs, errors.New("catalog.sections must name at least one section"))
	}
	if c.Catalog.MaxPrice < 0 {
		errs = append(errs, errors.New("catalog.max_price cannot be negative"))
	}

	if c.Notify.Enabled {
		if c.Notify.From == "" || len(c.Notify.To) == 0 {
			errs = append(errs, errors.New("notify: from and to are required when enabled"))
		}
		if c.Notify.Smtp.Server == "" || c.Notify.Smtp.Port == 0 {
			errs = append(errs, errors.New("notify.smtp: server and port are required when enabled"))
		}
	}

	if c.NearMissThreshold < 0 || c.NearMissThreshold > 1 {
		errs = append(errs, errors.New("near_miss_threshold must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Minute * 5
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) TrackerOptions() tracker.Options {
	return tracker.Options{
		DocumentId:        c.Document.Id,
		StartHeading:      c.Document.StartHeading,
		EndHeading:        c.Document.EndHeading,
		IndexUrl:          c.Catalog.IndexUrl,
		LinkPrefix:        c.Catalog.LinkPrefix,
		Sections:          c.Catalog.Sections,
		Selectors:         c.Catalog.Selectors,
		MaxPrice:          c.Catalog.MaxPrice,
		NearMissThreshold: c.NearMissThreshold,
		Notify: notify.ComposeOptions{
			From:    c.Notify.From,
			To:      c.Notify.To,
			Subject: c.Notify.Subject,
		},
	}
}

// DocumentSource builds the configured wish list document source.
func (c Config) DocumentSource(tel telemetry.API) docsource.Source {
	if c.Document.Source == SourceDocx {
		return docsource.NewDocx(tel)
	}
	return docsource.NewGoogleDocs(docsource.GoogleDocsOptions{
		Credentials: c.Document.Google,
	}, tel)
}

func (c Config) PageFetcher(tel telemetry.API) pagefetch.Fetcher {
	return pagefetch.NewHTTP(pagefetch.Options{
		RequestsPerSecond: c.Catalog.RequestsPerSecond,
		DumpDir:           c.Catalog.DumpDir,
	}, tel)
}

// Notifier builds the configured notifier. When dryRun is set the message is
// written to out instead of being sent, nil is returned if notifications are
// disabled.
func (c Config) Notifier(dryRun bool, out io.Writer, tel telemetry.API) notify.Notifier {
	if dryRun {
		return notify.NewWriter(out)
	}
	if !c.Notify.Enabled {
		return nil
	}
	return notify.NewSMTP(c.Notify.Smtp, tel)
}

// Collaborators wires every collaborator of a tracker run.
func (c Config) Collaborators(dryRun bool, out io.Writer, tel telemetry.API) tracker.Collaborators {
	return tracker.Collaborators{
		Documents: c.DocumentSource(tel),
		Pages:     c.PageFetcher(tel),
		Notifier:  c.Notifier(dryRun, out, tel),
	}
}
