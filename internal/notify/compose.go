package notify

import (
	"bytes"
	"fmt"
	"strings"

	"salestracker/internal/catalog"
	"salestracker/internal/matcher"

	"github.com/yuin/goldmark"
)

type ComposeOptions struct {
	From    string
	To      []string
	Subject string
	// Listing is the url of the sale round-up the matches were found in.
	Listing string
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Compose builds the notification listing every match with its price and
// purchase link. The html body is rendered from the same content as markdown.
func Compose(options ComposeOptions, matches []catalog.SaleRecord, nearMisses []matcher.NearMiss) (Message, error) {
	subject := options.Subject
	if subject == "" {
		subject = fmt.Sprintf("%d wish list items on sale", len(matches))
	}

	var text strings.Builder
	var markdown strings.Builder

	if len(matches) == 0 {
		text.WriteString("Nothing from your wish list is on sale right now.\n")
		markdown.WriteString("Nothing from your wish list is on sale right now.\n")
	} else {
		text.WriteString("The following items from your wish list are on sale:\n\n")
		markdown.WriteString("The following items from your wish list are on sale:\n\n")
		for _, m := range matches {
			fmt.Fprintf(&text, "- %s (%s): %s\n", m.Title, m.Price, m.Link)
			fmt.Fprintf(&markdown, "- [%s](<%s>) %s\n", escapeMarkdown(m.Title), m.Link, escapeMarkdown(m.Price))
		}
	}

	if len(nearMisses) > 0 {
		text.WriteString("\nThese look similar to items on your wish list:\n\n")
		markdown.WriteString("\nThese look similar to items on your wish list:\n\n")
		for _, n := range nearMisses {
			fmt.Fprintf(&text, "- %s (for %q, %s): %s\n", n.Record.Title, n.Wish, n.Record.Price, n.Record.Link)
			fmt.Fprintf(
				&markdown, "- [%s](<%s>) %s, for *%s*\n",
				escapeMarkdown(n.Record.Title), n.Record.Link,
				escapeMarkdown(n.Record.Price), escapeMarkdown(n.Wish),
			)
		}
	}

	if options.Listing != "" {
		fmt.Fprintf(&text, "\nSource: %s\n", options.Listing)
		fmt.Fprintf(&markdown, "\nSource: <%s>\n", options.Listing)
	}

	var html bytes.Buffer
	err := goldmark.Convert([]byte(markdown.String()), &html)
	if err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}

	return Message{
		From:    options.From,
		To:      options.To,
		Subject: subject,
		Text:    text.String(),
		Html:    html.String(),
	}, nil
}
