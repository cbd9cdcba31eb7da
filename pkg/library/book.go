package library

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BookKey is a book's identity: two books with the same title, authors and year are the same book.
type BookKey struct {
	title         string
	authors       string
	publishedYear int
}

// String renders the key for messages.
func (key BookKey) String() string {
	return fmt.Sprintf("%s (%s, %d)", key.title, strings.ReplaceAll(key.authors, authorKeySeparator, ", "), key.publishedYear)
}

// Book is a catalog entry with per-edition stock.
type Book struct {
	title         string
	authors       []string
	publishedYear int
	editions      map[EditionID]int
	rentalFee     decimal.Decimal
}

// NewBook validates its inputs and builds a book. Authors are trimmed, deduplicated and sorted.
func NewBook(title string, authors []string, publishedYear int, editions map[EditionID]int, rentalFee decimal.Decimal) (*Book, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidTitle)
	}
	normalizedAuthors := normalizeAuthors(authors)
	if len(normalizedAuthors) == 0 {
		return nil, fmt.Errorf("%w: book %q needs at least one author", ErrInvalidAuthors, trimmedTitle)
	}
	if publishedYear <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPublishedYear, publishedYear)
	}
	fee, err := NewRentalFee(rentalFee)
	if err != nil {
		return nil, err
	}
	stock := make(map[EditionID]int, len(editions))
	for edition, count := range editions {
		if edition.String() == "" {
			return nil, fmt.Errorf("%w: empty value", ErrInvalidEditionID)
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: edition %q has %d", ErrInvalidStock, edition.String(), count)
		}
		stock[edition] = count
	}
	return &Book{
		title:         trimmedTitle,
		authors:       normalizedAuthors,
		publishedYear: publishedYear,
		editions:      stock,
		rentalFee:     fee,
	}, nil
}

// Key returns the identity of the book.
func (book *Book) Key() BookKey {
	return BookKey{
		title:         book.title,
		authors:       strings.Join(book.authors, authorKeySeparator),
		publishedYear: book.publishedYear,
	}
}

// Title returns the book title.
func (book *Book) Title() string {
	return book.title
}

// Authors returns a copy of the sorted author list.
func (book *Book) Authors() []string {
	return append([]string(nil), book.authors...)
}

// PublishedYear returns the publication year.
func (book *Book) PublishedYear() int {
	return book.publishedYear
}

// RentalFee returns the flat fee charged per loan.
func (book *Book) RentalFee() decimal.Decimal {
	return book.rentalFee
}

// Editions returns a copy of the stock map.
func (book *Book) Editions() map[EditionID]int {
	out := make(map[EditionID]int, len(book.editions))
	for edition, count := range book.editions {
		out[edition] = count
	}
	return out
}

// Stock returns the count for an edition and whether the edition was ever registered.
func (book *Book) Stock(edition EditionID) (int, bool) {
	count, ok := book.editions[edition]
	return count, ok
}

// AddEdition puts one copy of the edition on the shelf, registering the edition if needed.
func (book *Book) AddEdition(edition EditionID) {
	if book.editions == nil {
		book.editions = make(map[EditionID]int)
	}
	book.editions[edition]++
}

// RemoveEdition takes one copy of the edition off the shelf.
func (book *Book) RemoveEdition(edition EditionID) error {
	count, ok := book.editions[edition]
	if !ok {
		return fmt.Errorf("%w: book %q has no edition %q", ErrNotFound, book.title, edition.String())
	}
	if count == 0 {
		return fmt.Errorf("%w: no stock left for %q edition %q", ErrOutOfStock, book.title, edition.String())
	}
	book.editions[edition] = count - 1
	return nil
}

// DisplayInfo renders a one-line description.
func (book *Book) DisplayInfo() string {
	editions := make([]string, 0, len(book.editions))
	for _, edition := range sortedEditions(book.editions) {
		editions = append(editions, fmt.Sprintf("%s:%d", edition.String(), book.editions[edition]))
	}
	return fmt.Sprintf("%q by %s (%d) fee=%s editions=[%s]",
		book.title,
		strings.Join(book.authors, ", "),
		book.publishedYear,
		book.rentalFee.StringFixed(2),
		strings.Join(editions, " "),
	)
}

func normalizeAuthors(authors []string) []string {
	seen := make(map[string]struct{}, len(authors))
	out := make([]string, 0, len(authors))
	for _, author := range authors {
		trimmed := strings.TrimSpace(author)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}

func sortedEditions(editions map[EditionID]int) []EditionID {
	out := make([]EditionID, 0, len(editions))
	for edition := range editions {
		out = append(out, edition)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].value < out[j].value })
	return out
}
