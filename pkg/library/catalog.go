package library

import "fmt"

// Library is the catalog: an ordered sequence of books and the late-fee percentage.
type Library struct {
	books   []*Book
	lateFee LateFeePercentage
}

// NewLibrary builds a catalog. Books sharing an identity are rejected.
func NewLibrary(books []*Book, lateFee LateFeePercentage) (*Library, error) {
	library := &Library{lateFee: lateFee}
	for _, book := range books {
		if err := library.AddBook(book); err != nil {
			return nil, err
		}
	}
	return library, nil
}

// LateFeePercentage returns the percentage used for late penalties.
func (library *Library) LateFeePercentage() LateFeePercentage {
	return library.lateFee
}

// Fees returns the fee engine configured with this library's late fee.
func (library *Library) Fees() FeeEngine {
	return NewFeeEngine(library.lateFee)
}

// Books returns the catalog in insertion order.
func (library *Library) Books() []*Book {
	return append([]*Book(nil), library.books...)
}

// FindByTitle performs an exact title lookup.
func (library *Library) FindByTitle(title string) (*Book, error) {
	for _, book := range library.books {
		if book.title == title {
			return book, nil
		}
	}
	return nil, fmt.Errorf("%w: book %q", ErrNotFound, title)
}

// AddBook appends a book to the catalog.
func (library *Library) AddBook(book *Book) error {
	if book == nil {
		return fmt.Errorf("%w: nil book", ErrInvalidTitle)
	}
	key := book.Key()
	for _, existing := range library.books {
		if existing.Key() == key {
			return fmt.Errorf("%w: book %s", ErrAlreadyExists, key.String())
		}
	}
	library.books = append(library.books, book)
	return nil
}

// AddEdition restocks one copy of an edition of the titled book.
func (library *Library) AddEdition(title string, edition EditionID) error {
	book, err := library.FindByTitle(title)
	if err != nil {
		return err
	}
	book.AddEdition(edition)
	return nil
}

// RemoveEdition takes one copy of an edition of the titled book out of stock.
func (library *Library) RemoveEdition(title string, edition EditionID) error {
	book, err := library.FindByTitle(title)
	if err != nil {
		return err
	}
	return book.RemoveEdition(edition)
}

func (library *Library) removeBook(key BookKey) {
	for index, book := range library.books {
		if book.Key() == key {
			library.books = append(library.books[:index], library.books[index+1:]...)
			return
		}
	}
}
