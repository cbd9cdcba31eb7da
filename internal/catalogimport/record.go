// Package catalogimport builds catalog books from JSON, CSV, or YAML files.
package catalogimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

// Amount is a decimal that also decodes from YAML scalars.
type Amount struct {
	decimal.Decimal
}

// UnmarshalYAML parses the scalar text exactly, without a float round trip.
func (amount *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: rental fee must be a scalar", ErrInvalidRecord)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("%w: rental fee %q: %v", ErrInvalidRecord, node.Value, err)
	}
	amount.Decimal = value
	return nil
}

// Record is one imported book before validation.
type Record struct {
	Title         string         `json:"title" yaml:"title"`
	Authors       []string       `json:"authors" yaml:"authors"`
	PublishedYear int            `json:"published_year" yaml:"published_year"`
	RentalFee     Amount         `json:"rental_fee" yaml:"rental_fee"`
	Editions      map[string]int `json:"editions" yaml:"editions"`
}

// Book validates the record through the catalog constructors.
func (record Record) Book() (*library.Book, error) {
	editions := make(map[library.EditionID]int, len(record.Editions))
	for raw, count := range record.Editions {
		edition, err := library.NewEditionID(raw)
		if err != nil {
			return nil, err
		}
		editions[edition] = count
	}
	return library.NewBook(record.Title, record.Authors, record.PublishedYear, editions, record.RentalFee.Decimal)
}

func booksFromRecords(records []Record) ([]*library.Book, error) {
	books := make([]*library.Book, 0, len(records))
	for index, record := range records {
		book, err := record.Book()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d (%q): %w", ErrInvalidRecord, index+1, record.Title, err)
		}
		books = append(books, book)
	}
	return books, nil
}
