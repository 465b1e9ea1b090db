// Package docsource retrieves the body of the wish list document.
package docsource

import (
	"context"
	"errors"

	"salestracker/internal/wishlist"
)

// ErrDocumentUnavailable is returned when a document cannot be retrieved or read.
var ErrDocumentUnavailable = errors.New("document unavailable")

// Source retrieves the structural elements of a document's body.
//
// note: fault injection point
type Source interface {
	Fetch(ctx context.Context, documentId string) ([]wishlist.Element, error)
}
