// Package matcher reconciles wish list titles with the titles of a sale catalog.
package matcher

import (
	"strings"

	"salestracker/internal/catalog"
	"salestracker/internal/textutil"

	"github.com/antzucaro/matchr"
)

type normalizedRecord struct {
	title  string
	record catalog.SaleRecord
}

func normalizeCatalog(records []catalog.SaleRecord) []normalizedRecord {
	out := make([]normalizedRecord, len(records))
	for i, r := range records {
		out[i] = normalizedRecord{title: textutil.Normalize(r.Title), record: r}
	}
	return out
}

func normalizeWishlist(wishlist []string) []string {
	out := make([]string, len(wishlist))
	for i, w := range wishlist {
		out[i] = textutil.Normalize(w)
	}
	return out
}

// exactMatches returns the set of normalized catalog titles equal to a wish list title.
func exactMatches(wishlist []string, records []normalizedRecord) map[string]struct{} {
	wanted := make(map[string]struct{}, len(wishlist))
	for _, w := range wishlist {
		wanted[w] = struct{}{}
	}
	matched := make(map[string]struct{})
	for _, r := range records {
		if _, ok := wanted[r.title]; ok {
			matched[r.title] = struct{}{}
		}
	}
	return matched
}

// partialMatches returns the set of normalized catalog titles containing a wish list title,
// which covers listings that append an edition or platform to the base title.
func partialMatches(wishlist []string, records []normalizedRecord) map[string]struct{} {
	matched := make(map[string]struct{})
	for _, r := range records {
		for _, w := range wishlist {
			if w == "" {
				continue
			}
			if strings.Contains(r.title, w) {
				matched[r.title] = struct{}{}
				break
			}
		}
	}
	return matched
}

// Match returns the catalog records whose normalized title equals or contains
// a normalized wish list title. Matching is case sensitive.
//
// Records are de-duplicated by normalized title: when the same title is listed
// more than once (ex. in two sections of a round-up) only the first record is
// returned. The result keeps catalog order.
func Match(wishlist []string, records []catalog.SaleRecord) []catalog.SaleRecord {
	if len(wishlist) == 0 || len(records) == 0 {
		return nil
	}

	normalized := normalizeCatalog(records)
	titles := normalizeWishlist(wishlist)

	union := exactMatches(titles, normalized)
	for title := range partialMatches(titles, normalized) {
		union[title] = struct{}{}
	}

	var result []catalog.SaleRecord
	seen := make(map[string]struct{}, len(union))
	for _, r := range normalized {
		if _, ok := union[r.title]; !ok {
			continue
		}
		if _, ok := seen[r.title]; ok {
			continue
		}
		seen[r.title] = struct{}{}
		result = append(result, r.record)
	}
	return result
}

// NearMiss is a catalog record that closely resembles a wish list title which
// did not match anything.
type NearMiss struct {
	Wish       string
	Record     catalog.SaleRecord
	Similarity float64
}

// NearMisses returns, for every wish list title without a match, the most
// similar catalog record by Jaro-Winkler similarity if it is at least threshold.
// Near misses are suggestions only, they never count as matches.
func NearMisses(wishlist []string, records []catalog.SaleRecord, threshold float64) []NearMiss {
	if len(wishlist) == 0 || len(records) == 0 || threshold <= 0 {
		return nil
	}

	normalized := normalizeCatalog(records)

	var result []NearMiss
	for _, wish := range wishlist {
		w := textutil.Normalize(wish)
		if w == "" {
			continue
		}
		single := []string{w}
		if len(exactMatches(single, normalized)) > 0 || len(partialMatches(single, normalized)) > 0 {
			continue
		}

		var best NearMiss
		for _, r := range normalized {
			similarity := matchr.JaroWinkler(w, r.title, false)
			if similarity > best.Similarity {
				best = NearMiss{Wish: wish, Record: r.record, Similarity: similarity}
			}
		}
		if best.Similarity >= threshold {
			result = append(result, best)
		}
	}
	return result
}
