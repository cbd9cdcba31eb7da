package catalogimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	columnTitle         = "title"
	columnAuthor        = "author"
	columnAuthors       = "authors"
	columnPublishedYear = "published_year"
	columnRentalFee     = "rental_fee"
	columnEditions      = "editions"
	authorSeparator     = ","
	editionSeparator    = ";"
	editionCountMarker  = ":"
)

// readCSV expects a header row. Authors are comma separated inside one cell and
// editions look like "1:3;2:0".
func readCSV(reader io.Reader) ([]Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing csv header: %v", ErrInvalidRecord, err)
	}
	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = index
	}
	authorsColumn, hasAuthors := columns[columnAuthors]
	if !hasAuthors {
		authorsColumn, hasAuthors = columns[columnAuthor]
	}
	for _, required := range []string{columnTitle, columnPublishedYear, columnRentalFee} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: csv header lacks %q", ErrInvalidRecord, required)
		}
	}
	if !hasAuthors {
		return nil, fmt.Errorf("%w: csv header lacks %q", ErrInvalidRecord, columnAuthor)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		cell := func(column int) string {
			if column >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[column])
		}
		year, err := strconv.Atoi(cell(columns[columnPublishedYear]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: published year: %v", ErrInvalidRecord, line, err)
		}
		fee, err := decimal.NewFromString(cell(columns[columnRentalFee]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: rental fee: %v", ErrInvalidRecord, line, err)
		}
		record := Record{
			Title:         cell(columns[columnTitle]),
			Authors:       strings.Split(cell(authorsColumn), authorSeparator),
			PublishedYear: year,
			RentalFee:     Amount{Decimal: fee},
		}
		if editionsColumn, ok := columns[columnEditions]; ok {
			record.Editions, err = parseEditions(cell(editionsColumn))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, line, err)
			}
		}
		records = append(records, record)
	}
}

func parseEditions(raw string) (map[string]int, error) {
	editions := make(map[string]int)
	if raw == "" {
		return editions, nil
	}
	for _, part := range strings.Split(raw, editionSeparator) {
		edition, countText, found := strings.Cut(strings.TrimSpace(part), editionCountMarker)
		if !found {
			return nil, fmt.Errorf("edition %q needs the form edition:count", part)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countText))
		if err != nil {
			return nil, fmt.Errorf("edition %q count: %v", edition, err)
		}
		editions[strings.TrimSpace(edition)] = count
	}
	return editions, nil
}
