package htmlutil

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the visible text of a selection with non-printable
// characters removed, surrounding whitespace trimmed and inner whitespace
// runs collapsed into a single space.
func CleanText(sel *goquery.Selection) string {
	text := removeNonPrintable(sel.Text())
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

// GetAnchors returns the name and raw href of every node in the selection,
// nodes without an href are skipped.
func GetAnchors(sel *goquery.Selection) []Anchor {
	var anchors []Anchor
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		anchors = append(anchors, Anchor{
			Name: CleanText(a),
			Href: strings.TrimSpace(href),
		})
	})
	return anchors
}

// ResolveLink resolves href against base, absolute hrefs are returned as-is.
func ResolveLink(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return baseUrl.ResolveReference(ref).String(), nil
}

// JoinLink appends href to prefix, keeping the path of the prefix. Absolute
// hrefs are returned as-is.
func JoinLink(prefix, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if href == "" {
		return prefix, nil
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(href, "/"), nil
}
