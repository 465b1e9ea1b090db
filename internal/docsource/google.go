package docsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salestracker/internal/telemetry"
	"salestracker/internal/wishlist"

	"github.com/go-resty/resty/v2"
)

const (
	report_google_docs_fetch         = "google-docs.fetch"
	report_google_docs_refresh_token = "google-docs.refresh-token"
)

const defaultDocsBaseUrl = "https://docs.googleapis.com"

type GoogleCredentials struct {
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	// AccessToken, if set, is used as-is instead of refreshing one.
	AccessToken string `json:"access_token"`
}

type GoogleDocsOptions struct {
	Credentials GoogleCredentials
	// BaseUrl defaults to https://docs.googleapis.com
	BaseUrl string
	// TokenUrl defaults to https://oauth2.googleapis.com/token
	TokenUrl string
}

// GoogleDocs reads documents through the Google Docs REST api.
type GoogleDocs struct {
	http    *resty.Client
	options GoogleDocsOptions
	tel     telemetry.API
}

func NewGoogleDocs(options GoogleDocsOptions, tel telemetry.API) GoogleDocs {
	if options.BaseUrl == "" {
		options.BaseUrl = defaultDocsBaseUrl
	}
	if options.TokenUrl == "" {
		options.TokenUrl = defaultTokenUrl
	}
	tel = telemetry.NewScopedAPI("docsource", tel)

	client := resty.New()
	client.SetBaseURL(options.BaseUrl)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, tel)

	return GoogleDocs{
		http:    client,
		options: options,
		tel:     tel,
	}
}

func (g GoogleDocs) accessToken(ctx context.Context) (string, error) {
	creds := g.options.Credentials
	if creds.AccessToken != "" {
		return creds.AccessToken, nil
	}
	if creds.RefreshToken == "" {
		return "", fmt.Errorf("no access token or refresh token configured")
	}

	token, err := RefreshAccessToken(ctx, g.http, g.options.TokenUrl, RefreshRequest{
		ClientId:     creds.ClientId,
		ClientSecret: creds.ClientSecret,
		RefreshToken: creds.RefreshToken,
	})
	if err != nil {
		g.tel.ReportBroken(report_google_docs_refresh_token, err)
		return "", err
	}
	return token.AccessToken, nil
}

func (g GoogleDocs) Fetch(ctx context.Context, documentId string) ([]wishlist.Element, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: authenticate: %w", ErrDocumentUnavailable, err)
	}

	var doc docsDocument
	res, err := g.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("documentId", documentId).
		SetResult(&doc).
		Get("/v1/documents/{documentId}")
	if err != nil {
		g.tel.ReportBroken(report_google_docs_fetch, fmt.Errorf("fetch: %w", err), documentId)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %s", res.Status())
		g.tel.ReportBroken(report_google_docs_fetch, err, documentId)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}

	return doc.elements(), nil
}

type docsDocument struct {
	Body struct {
		Content []docsStructuralElement `json:"content"`
	} `json:"body"`
}

type docsStructuralElement struct {
	Paragraph       *docsParagraph   `json:"paragraph"`
	SectionBreak    *json.RawMessage `json:"sectionBreak"`
	Table           *json.RawMessage `json:"table"`
	TableOfContents *json.RawMessage `json:"tableOfContents"`
}

type docsParagraph struct {
	Elements []struct {
		TextRun *struct {
			Content string `json:"content"`
		} `json:"textRun"`
	} `json:"elements"`
	ParagraphStyle struct {
		NamedStyleType string `json:"namedStyleType"`
	} `json:"paragraphStyle"`
}

func (d docsDocument) elements() []wishlist.Element {
	elements := make([]wishlist.Element, 0, len(d.Body.Content))
	for _, e := range d.Body.Content {
		switch {
		case e.Paragraph != nil:
			p := wishlist.Paragraph{
				Style:    e.Paragraph.ParagraphStyle.NamedStyleType,
				Elements: make([]wishlist.InlineElement, len(e.Paragraph.Elements)),
			}
			for i, inline := range e.Paragraph.Elements {
				if inline.TextRun != nil {
					p.Elements[i].TextRun = &wishlist.TextRun{Content: inline.TextRun.Content}
				}
			}
			elements = append(elements, p)
		case e.SectionBreak != nil:
			elements = append(elements, wishlist.SectionBreak{})
		case e.Table != nil:
			elements = append(elements, wishlist.Table{})
		case e.TableOfContents != nil:
			elements = append(elements, wishlist.TableOfContents{})
		}
	}
	return elements
}
