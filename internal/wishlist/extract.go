// Package wishlist turns the body of a wish list document into the titles
// listed under one of its top-level headings.
package wishlist

import (
	"errors"
	"fmt"
	"strings"

	"salestracker/internal/textutil"
)

// ErrMalformedDocument is returned when a document lacks the heading
// structure the wish list is expected to have.
var ErrMalformedDocument = errors.New("malformed document")

// Paragraphs filters out every structural element that is not a paragraph.
func Paragraphs(elements []Element) []Paragraph {
	paragraphs := make([]Paragraph, 0, len(elements))
	for _, e := range elements {
		switch e := e.(type) {
		case Paragraph:
			paragraphs = append(paragraphs, e)
		case *Paragraph:
			if e != nil {
				paragraphs = append(paragraphs, *e)
			}
		case SectionBreak, *SectionBreak, Table, *Table, TableOfContents, *TableOfContents:
		case nil:
		default:
			panic(fmt.Sprintf("unhandled document element %T", e))
		}
	}
	return paragraphs
}

// Scan flattens paragraphs into one entry per inline element and returns the
// positions of every entry that belongs to a top-level heading, headings are
// strictly increasing.
//
// An inline element without a text run still yields an (empty) entry, so
// positions always line up with the inline elements of the document.
func Scan(paragraphs []Paragraph) (entries []Entry, headings []int) {
	for _, p := range paragraphs {
		isHeading := p.Style == StyleHeading1
		for _, elem := range p.Elements {
			text := ""
			if elem.TextRun != nil {
				text = elem.TextRun.Content
			}
			position := len(entries)
			entries = append(entries, Entry{Text: text, Position: position})
			if isHeading {
				headings = append(headings, position)
			}
		}
	}
	return entries, headings
}

// Slice returns the entries strictly between the start-th and end-th heading.
func Slice(entries []Entry, headings []int, start, end int) ([]Entry, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: invalid heading ordinals %d..%d", ErrMalformedDocument, start, end)
	}
	if len(headings) < end+1 {
		return nil, fmt.Errorf(
			"%w: expected at least %d top-level headings, found %d",
			ErrMalformedDocument, end+1, len(headings),
		)
	}

	from := headings[start] + 1
	to := headings[end]
	if from > to || to > len(entries) {
		return nil, fmt.Errorf("%w: heading positions out of range", ErrMalformedDocument)
	}
	return entries[from:to], nil
}

// ExtractSection returns the wish list titles found between the start-th and
// end-th top-level heading of a document body. Blank entries (bare newlines
// included) are dropped and annotations are stripped from the rest.
func ExtractSection(elements []Element, start, end int) ([]string, error) {
	paragraphs := Paragraphs(elements)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("%w: document has no paragraphs", ErrMalformedDocument)
	}

	entries, headings := Scan(paragraphs)
	section, err := Slice(entries, headings, start, end)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(section))
	for _, entry := range section {
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		title := textutil.StripAnnotations(entry.Text)
		// an empty title would be contained in every catalog title
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}
