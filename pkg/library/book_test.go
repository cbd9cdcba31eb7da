package library

import (
	"errors"
	"strings"
	"testing"
)

func TestNewBookNormalizesAuthorsAndIdentity(test *testing.T) {
	test.Parallel()
	first, err := NewBook("Dune", []string{" Frank Herbert ", "Brian Herbert", "Frank Herbert"}, 1965, nil, mustDecimal(test, "2.00"))
	if err != nil {
		test.Fatalf("new book: %v", err)
	}
	second, err := NewBook("Dune", []string{"Brian Herbert", "Frank Herbert"}, 1965, nil, mustDecimal(test, "3.00"))
	if err != nil {
		test.Fatalf("new book: %v", err)
	}
	if first.Key() != second.Key() {
		test.Fatalf("expected equal identities, got %s and %s", first.Key(), second.Key())
	}
	if authors := first.Authors(); len(authors) != 2 || authors[0] != "Brian Herbert" {
		test.Fatalf("unexpected authors: %v", authors)
	}
	other, err := NewBook("Dune", []string{"Frank Herbert"}, 1966, nil, mustDecimal(test, "2.00"))
	if err != nil {
		test.Fatalf("new book: %v", err)
	}
	if other.Key() == first.Key() {
		test.Fatalf("expected different identity for different year")
	}
}

func TestNewBookValidation(test *testing.T) {
	test.Parallel()
	fee := mustDecimal(test, "1")
	cases := []struct {
		name     string
		title    string
		authors  []string
		year     int
		editions map[EditionID]int
		fee      string
		wantErr  error
	}{
		{name: "empty title", title: " ", authors: []string{"A"}, year: 2000, fee: "1", wantErr: ErrInvalidTitle},
		{name: "no authors", title: "T", authors: []string{" "}, year: 2000, fee: "1", wantErr: ErrInvalidAuthors},
		{name: "bad year", title: "T", authors: []string{"A"}, year: 0, fee: "1", wantErr: ErrInvalidPublishedYear},
		{name: "negative fee", title: "T", authors: []string{"A"}, year: 2000, fee: "-1", wantErr: ErrInvalidAmount},
		{name: "negative stock", title: "T", authors: []string{"A"}, year: 2000, fee: "1", editions: map[EditionID]int{mustEditionID(test, "1"): -1}, wantErr: ErrInvalidStock},
	}
	for _, tc := range cases {
		tc := tc
		test.Run(tc.name, func(test *testing.T) {
			test.Parallel()
			_, err := NewBook(tc.title, tc.authors, tc.year, tc.editions, mustDecimal(test, tc.fee))
			if !errors.Is(err, tc.wantErr) {
				test.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if _, err := NewBook("T", []string{"A"}, 2000, nil, fee); err != nil {
		test.Fatalf("unexpected error: %v", err)
	}
}

func TestAddEditionCreatesAndIncrements(test *testing.T) {
	test.Parallel()
	book := mustBook(test, "Dune", "2.00", nil)
	edition := mustEditionID(test, "1")
	if _, ok := book.Stock(edition); ok {
		test.Fatalf("expected edition to be absent")
	}
	book.AddEdition(edition)
	if got := stockOf(test, book, "1"); got != 1 {
		test.Fatalf("expected stock 1, got %d", got)
	}
	book.AddEdition(edition)
	if got := stockOf(test, book, "1"); got != 2 {
		test.Fatalf("expected stock 2, got %d", got)
	}
}

func TestRemoveEditionFailures(test *testing.T) {
	test.Parallel()
	book := mustBook(test, "Dune", "2.00", map[string]int{"1": 1, "2": 0})

	if err := book.RemoveEdition(mustEditionID(test, "3")); !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := book.RemoveEdition(mustEditionID(test, "2")); !errors.Is(err, ErrOutOfStock) {
		test.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if got := stockOf(test, book, "2"); got != 0 {
		test.Fatalf("expected stock to stay 0, got %d", got)
	}
	if err := book.RemoveEdition(mustEditionID(test, "1")); err != nil {
		test.Fatalf("remove edition: %v", err)
	}
	if err := book.RemoveEdition(mustEditionID(test, "1")); !errors.Is(err, ErrOutOfStock) {
		test.Fatalf("expected ErrOutOfStock once exhausted, got %v", err)
	}
}

func TestEditionsReturnsCopy(test *testing.T) {
	test.Parallel()
	book := mustBook(test, "Dune", "2.00", map[string]int{"1": 1})
	editions := book.Editions()
	editions[mustEditionID(test, "1")] = 99
	if got := stockOf(test, book, "1"); got != 1 {
		test.Fatalf("mutating the copy changed stock to %d", got)
	}
}

func TestLibraryFindByTitleIsExact(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "10", mustBook(test, "Dune", "2.00", nil))
	if _, err := system.GetBook("dune"); !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound for case-mismatched title, got %v", err)
	}
	book, err := system.GetBook("Dune")
	if err != nil {
		test.Fatalf("get book: %v", err)
	}
	if !strings.Contains(book.DisplayInfo(), `"Dune"`) {
		test.Fatalf("unexpected display info: %s", book.DisplayInfo())
	}
}

func TestLibraryRejectsDuplicateIdentity(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "10", mustBook(test, "Dune", "2.00", nil))
	err := system.AddBook(mustBook(test, "Dune", "9.00", map[string]int{"1": 3}))
	if !errors.Is(err, ErrAlreadyExists) {
		test.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if len(system.Books()) != 1 {
		test.Fatalf("expected one book, got %d", len(system.Books()))
	}
}

func TestLibraryEditionOperationsByTitle(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "10", mustBook(test, "Dune", "2.00", nil))
	edition := mustEditionID(test, "1")
	if err := system.Library().AddEdition("Missing", edition); !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := system.Library().AddEdition("Dune", edition); err != nil {
		test.Fatalf("add edition: %v", err)
	}
	if err := system.Library().RemoveEdition("Dune", edition); err != nil {
		test.Fatalf("remove edition: %v", err)
	}
	if err := system.Library().RemoveEdition("Dune", edition); !errors.Is(err, ErrOutOfStock) {
		test.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}
