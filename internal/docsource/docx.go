package docsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"salestracker/internal/telemetry"
	"salestracker/internal/wishlist"

	"github.com/fumiama/go-docx"
)

const report_docx_fetch = "docx.fetch"

// Docx reads a wish list exported as a .docx file, the document id is the path to the file.
type Docx struct {
	tel telemetry.API
}

func NewDocx(tel telemetry.API) Docx {
	return Docx{tel: telemetry.NewScopedAPI("docsource", tel)}
}

func (d Docx) Fetch(ctx context.Context, documentId string) ([]wishlist.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}

	f, err := os.Open(documentId)
	if err != nil {
		d.tel.ReportBroken(report_docx_fetch, fmt.Errorf("open: %w", err), documentId)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		d.tel.ReportBroken(report_docx_fetch, fmt.Errorf("stat: %w", err), documentId)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		d.tel.ReportBroken(report_docx_fetch, fmt.Errorf("parse docx: %w", err), documentId)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
	}

	return elementsFromDocx(doc.Document.Body.Items), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return "NORMAL_TEXT"
	}
	style := para.Properties.Style.Val
	if strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1") {
		return wishlist.StyleHeading1
	}
	return style
}

// elementsFromDocx maps docx body items onto document elements. Every run of a
// paragraph becomes an inline element and, like in Google Docs, the last one
// is terminated by a newline so that blank paragraphs surface as "\n".
func elementsFromDocx(items []interface{}) []wishlist.Element {
	elements := make([]wishlist.Element, 0, len(items))
	for _, item := range items {
		switch item := item.(type) {
		case *docx.Paragraph:
			p := wishlist.Paragraph{Style: docxStyle(item)}
			for _, child := range item.Children {
				run, ok := child.(*docx.Run)
				if !ok {
					continue
				}
				var text strings.Builder
				hasText := false
				for _, rc := range run.Children {
					if t, ok := rc.(*docx.Text); ok {
						text.WriteString(t.Text)
						hasText = true
					}
				}
				inline := wishlist.InlineElement{}
				if hasText {
					inline.TextRun = &wishlist.TextRun{Content: text.String()}
				}
				p.Elements = append(p.Elements, inline)
			}

			last := len(p.Elements) - 1
			switch {
			case last < 0:
				p.Elements = append(p.Elements, wishlist.InlineElement{TextRun: &wishlist.TextRun{Content: "\n"}})
			case p.Elements[last].TextRun == nil:
				p.Elements[last].TextRun = &wishlist.TextRun{Content: "\n"}
			default:
				p.Elements[last].TextRun.Content += "\n"
			}
			elements = append(elements, p)
		case *docx.Table:
			elements = append(elements, wishlist.Table{})
		}
	}
	return elements
}
