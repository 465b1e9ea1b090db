// Package textutil canonicalizes free-text item titles so that titles from a
// personal list and from a retailer's catalog can be compared.
package textutil

import (
	"regexp"
	"strings"
)

// symbolStripper deletes decorative glyphs that retailers sprinkle into titles.
var symbolStripper = strings.NewReplacer(
	"©", "",
	"®", "",
	"•", "",
	"℗", "",
	"℠", "",
	"™", "",
)

var innerSpaces = regexp.MustCompile(` {2,}`)

// Normalize returns the comparison form of a title. Symbols are removed first,
// then runs of spaces are collapsed, then ASCII apostrophes become ’.
//
// Normalized titles are for comparison only and should never be displayed.
func Normalize(title string) string {
	title = symbolStripper.Replace(title)
	title = innerSpaces.ReplaceAllString(title, " ")
	title = strings.ReplaceAll(title, "'", "’")
	return title
}

// annotations are personal markers in the wish list that are never part of a title.
var annotations = strings.NewReplacer(
	"(NYA)", "",
	"(NYR)", "",
)

// StripAnnotations removes wish list annotations and trailing whitespace.
func StripAnnotations(entry string) string {
	entry = annotations.Replace(entry)
	return strings.TrimRight(entry, " \t\n\r\v\f")
}
