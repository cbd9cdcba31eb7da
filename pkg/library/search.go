package library

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SearchByTitle returns the first book whose title approximately contains the query.
// Unlike FindByTitle this is not an exact lookup.
func (library *Library) SearchByTitle(query string) (*Book, bool) {
	for _, book := range library.books {
		if partialRatio(query, book.title) > fuzzyMatchThreshold {
			return book, true
		}
	}
	return nil, false
}

// SearchByAuthor returns every book with at least one author approximately matching the query.
func (library *Library) SearchByAuthor(query string) []*Book {
	var matches []*Book
	for _, book := range library.books {
		for _, author := range book.authors {
			if partialRatio(author, query) > fuzzyMatchThreshold {
				matches = append(matches, book)
				break
			}
		}
	}
	return matches
}

// partialRatio scores 0..100 how well the shorter string matches its best-aligned
// window of the longer one, ignoring case.
func partialRatio(first string, second string) int {
	shorter := []rune(strings.ToLower(first))
	longer := []rune(strings.ToLower(second))
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	needle := string(shorter)
	total := 2 * len(shorter)
	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		distance := fuzzy.LevenshteinDistance(needle, string(longer[start:start+len(shorter)]))
		score := 100 * (total - distance) / total
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}
