package wishlist

// StyleHeading1 is the named style of a top-level heading paragraph.
const StyleHeading1 = "HEADING_1"

// Element is a structural element of a document body. It is one of
// Paragraph, SectionBreak, Table or TableOfContents.
type Element interface {
	element()
}

// Paragraph is a run of inline elements sharing one named style.
type Paragraph struct {
	Style    string
	Elements []InlineElement
}

// InlineElement is a single element inside a paragraph, TextRun is nil for
// elements that carry no text (inline images, page breaks, etc.)
type InlineElement struct {
	TextRun *TextRun
}

type TextRun struct {
	Content string
}

type SectionBreak struct{}

type Table struct{}

type TableOfContents struct{}

func (Paragraph) element()       {}
func (SectionBreak) element()    {}
func (Table) element()           {}
func (TableOfContents) element() {}

// Entry is the text of a single inline element along with its position in
// the flattened document.
type Entry struct {
	Text     string
	Position int
}

// Text returns a paragraph element holding a single text run, it is mostly
// useful for building documents by hand.
func Text(style string, content string) Paragraph {
	return Paragraph{
		Style:    style,
		Elements: []InlineElement{{TextRun: &TextRun{Content: content}}},
	}
}
