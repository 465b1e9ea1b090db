package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Writer "sends" messages by printing them, it is used for dry runs.
type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) Writer {
	return Writer{out: out}
}

func (w Writer) Send(_ context.Context, msg Message) (string, error) {
	_, err := fmt.Fprintf(
		w.out,
		"From: %s\nTo: %s\nSubject: %s\n\n%s\n",
		msg.From, strings.Join(msg.To, ", "), msg.Subject, msg.Text,
	)
	if err != nil {
		return "", err
	}
	return "dry-run", nil
}
