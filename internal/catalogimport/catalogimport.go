package catalogimport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

// Format names an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnsupportedFormat is returned for unknown extensions or format names.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")

	// ErrInvalidRecord is returned when an input record cannot become a book.
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// Options tune how a catalog is read.
type Options struct {
	// Format overrides detection by file extension.
	Format Format
	// Selector is a JSONPath expression locating the book list inside a JSON document.
	Selector string
}

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	extension := strings.TrimPrefix(filepath.Ext(path), ".")
	if extension == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(extension)
}

// ReadFile opens path and reads its books.
func ReadFile(path string, options Options) ([]*library.Book, error) {
	if options.Format == "" {
		format, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		options.Format = format
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(file, options)
}

// Read decodes books from reader in the given format.
func Read(reader io.Reader, options Options) ([]*library.Book, error) {
	if options.Selector != "" && options.Format != FormatJSON {
		return nil, fmt.Errorf("%w: selectors apply to json only", ErrUnsupportedFormat)
	}
	var (
		records []Record
		err     error
	)
	switch options.Format {
	case FormatJSON:
		records, err = readJSON(reader, options.Selector)
	case FormatCSV:
		records, err = readCSV(reader)
	case FormatYAML:
		records, err = readYAML(reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, options.Format)
	}
	if err != nil {
		return nil, err
	}
	return booksFromRecords(records)
}
